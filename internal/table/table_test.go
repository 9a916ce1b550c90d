package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_HeaderThenOneRowPerRecord(t *testing.T) {
	got := string(Render(DefaultDataset()))

	expected := "编号,名称,描述\n" +
		"1,Apple,A sweet red fruit\n" +
		"2,Banana,A yellow tropical fruit\n" +
		"3,Cherry,A small red stone fruit\n" +
		"4,Date,A sweet brown fruit from palm trees\n" +
		"5,Elderberry,A tart dark purple berry\n"
	assert.Equal(t, expected, got)
}

func TestRender_EmptyDatasetIsHeaderOnly(t *testing.T) {
	assert.Equal(t, Header+"\n", string(Render(nil)))
}

func TestFormatRow_UsesPositionalSequence(t *testing.T) {
	assert.Equal(t, "7,Fig,Soft", FormatRow(7, Record{Name: "Fig", Description: "Soft"}))
}

func TestRenderList_NewlineAfterEveryEntry(t *testing.T) {
	assert.Equal(t, "a\nb\n", string(RenderList([]string{"a", "b"})))
	assert.Empty(t, RenderList(nil))
}

func TestParseNames_RoundTripsRenderedDataset(t *testing.T) {
	ds := DefaultDataset()
	names, skipped := ParseNames(Render(ds))

	assert.Equal(t, ds.Names(), names)
	assert.Empty(t, skipped)
}

func TestParseNames_SkipsMalformedLinesWithoutStopping(t *testing.T) {
	content := strings.Join([]string{
		"header is never inspected",
		"1,Apple,red",
		"no commas here",
		"",
		"3,   ,blank name",
		"  4 , Date ,  padded  ",
		"5,Elderberry",
	}, "\n") + "\n"

	names, skipped := ParseNames([]byte(content))

	assert.Equal(t, []string{"Apple", "Date", "Elderberry"}, names)
	assert.Equal(t, []SkippedLine{
		{Line: 3, Reason: SkipTooFewFields},
		{Line: 4, Reason: SkipBlankLine},
		{Line: 5, Reason: SkipEmptyName},
	}, skipped)
}

func TestParseNames_HandlesCRLFAndMissingFinalNewline(t *testing.T) {
	names, _ := ParseNames([]byte("h\r\n1,Apple,x\r\n2,Banana,y"))
	assert.Equal(t, []string{"Apple", "Banana"}, names)
}

func TestParseNames_LoneCarriageReturnEndsLine(t *testing.T) {
	names, skipped := ParseNames([]byte("h\r1,Apple,x\r2,Banana,y\r"))
	assert.Equal(t, []string{"Apple", "Banana"}, names)
	assert.Nil(t, skipped)
}

func TestParseNames_HeaderOnlyOrEmpty(t *testing.T) {
	names, skipped := ParseNames(nil)
	assert.Nil(t, names)
	assert.Nil(t, skipped)

	names, skipped = ParseNames([]byte(Header + "\n"))
	assert.Nil(t, names)
	assert.Nil(t, skipped)
}

func TestLines(t *testing.T) {
	assert.Nil(t, Lines(""))
	assert.Equal(t, []string{"a"}, Lines("a\n"))
	assert.Equal(t, []string{"a", "b"}, Lines("a\nb"))
	assert.Equal(t, []string{"a", ""}, Lines("a\n\n"))
	assert.Equal(t, []string{"a", "b", "c"}, Lines("a\rb\r\nc\r"))
	assert.Equal(t, []string{"a", ""}, Lines("a\r\r"))
}

func TestDatasetValidate(t *testing.T) {
	require.NoError(t, DefaultDataset().Validate())
	require.NoError(t, Dataset{{Name: "Fig", Description: "soft, sweet"}}.Validate())

	err := Dataset{
		{Name: " ", Description: "ok"},
		{Name: "a,b", Description: "ok"},
		{Name: "c", Description: "line\nbreak"},
	}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records[0].name is required")
	assert.Contains(t, err.Error(), "records[1].name")
	assert.Contains(t, err.Error(), "records[2].description")
}
