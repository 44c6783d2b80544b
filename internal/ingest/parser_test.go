package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"docx_forensics/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPackageReadsKnownParts(t *testing.T) {
	raw := testutil.BuildDOCX(t, map[string]string{
		PartDocument:          testutil.Document(testutil.Paragraph("1", "00A1", testutil.Run("", "Hello"))),
		PartSettings:          testutil.Settings("00A1"),
		PartCore:              testutil.Core("Ann", "Ann", "1", "", ""),
		"word/styles.xml":     `<w:styles/>`,
		"[Content_Types].xml": `<Types/>`,
	})

	pkg, err := OpenPackage(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{PartDocument, PartSettings, PartCore}, pkg.Names())
	assert.False(t, pkg.Has("word/styles.xml"))
	assert.False(t, pkg.Has(PartCustom))
	assert.Nil(t, pkg.Part(PartApp))
	assert.Contains(t, string(pkg.Part(PartDocument)), "Hello")
}

func TestOpenPackageMissingDocument(t *testing.T) {
	raw := testutil.BuildDOCX(t, map[string]string{PartCore: testutil.Core("Ann", "", "", "", "")})
	_, err := OpenPackage(raw)
	require.ErrorIs(t, err, ErrMissingDocument)
}

func TestOpenPackageCorruptArchive(t *testing.T) {
	_, err := OpenPackage([]byte("definitely not a zip archive"))
	require.ErrorIs(t, err, ErrNotPackage)
}

func TestParseFileDOCX(t *testing.T) {
	raw := testutil.BuildDOCX(t, map[string]string{
		PartDocument: testutil.Document(testutil.Paragraph("", "", testutil.Run("", "Chapter 1"))),
	})
	path := filepath.Join(t.TempDir(), "Essay Draft.docx")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	parsed, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, KindDOCX, parsed.Kind)
	assert.Equal(t, "Essay Draft", parsed.Title)
	assert.Equal(t, "Essay Draft.docx", parsed.Name)
	assert.NotNil(t, parsed.Package)
	assert.Nil(t, parsed.PDF)
}

func TestParseFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := ParseFile(path)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseCorruptPDF(t *testing.T) {
	_, err := Parse("broken.pdf", []byte("%PDF-1.4 truncated"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotPackage)
}

func TestNormalizeWhitespace(t *testing.T) {
	got := normalizeWhitespace("  first   line \n\n\tsecond\tline\n   \n")
	assert.Equal(t, []string{"first line", "second line"}, got)
}
