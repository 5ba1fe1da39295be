package docxfile

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovoronin/glavtool/internal/chapter"
)

func paragraphsFromText(texts ...string) []chapter.Paragraph {
	return chapter.Paragraphs(texts)
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`

func paraXML(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

// buildDocx assembles a minimal DOCX package around the given body markup.
func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/document.xml": docxHeader + `<w:body>` + bodyXML + `</w:body></w:document>`,
	}
	for name, content := range parts {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParse_ExtractsParagraphs(t *testing.T) {
	data := buildDocx(t, paraXML("Глава 1")+paraXML("Первый абзац")+paraXML("Второй абзац"))

	doc, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())

	paras := doc.Paragraphs()
	assert.Equal(t, "Глава 1", paras[0].Text)
	assert.Equal(t, "Первый абзац", paras[1].Text)
	assert.Equal(t, "Второй абзац", paras[2].Text)
}

func TestParse_RawIsVerbatimMarkup(t *testing.T) {
	marked := `<w:p w:rsidR="00AA11BB"><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Текст</w:t></w:r></w:p>`
	data := buildDocx(t, paraXML("до")+marked+paraXML("после"))

	doc, err := Parse(data)
	require.NoError(t, err)

	paras := doc.Paragraphs()
	assert.Equal(t, marked, string(paras[1].Raw))
	assert.Equal(t, "Текст", paras[1].Text)
}

func TestParse_MultipleRunsConcatenated(t *testing.T) {
	body := `<w:p><w:r><w:t>Гла</w:t></w:r><w:r><w:t>ва 2</w:t></w:r></w:p>`
	doc, err := Parse(buildDocx(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Глава 2", doc.Paragraphs()[0].Text)
}

func TestParse_SkipsTableParagraphs(t *testing.T) {
	body := paraXML("свободный") +
		`<w:tbl><w:tr><w:tc>` + paraXML("в таблице") + `</w:tc></w:tr></w:tbl>`
	doc, err := Parse(buildDocx(t, body))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "свободный", doc.Paragraphs()[0].Text)
}

func TestParse_MissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Parse(buf.Bytes())
	assert.ErrorIs(t, err, ErrNoDocumentPart)
}

func TestSubset_KeepsSelectedParagraphsVerbatim(t *testing.T) {
	data := buildDocx(t, paraXML("Глава 1")+paraXML("тело один")+paraXML("тело два"))
	doc, err := Parse(data)
	require.NoError(t, err)

	paras := doc.Paragraphs()
	var out bytes.Buffer
	_, err = doc.Subset(paras[1:]).WriteTo(&out)
	require.NoError(t, err)

	round, err := Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, 2, round.Len())
	assert.Equal(t, "тело один", round.Paragraphs()[0].Text)
	assert.Equal(t, "тело два", round.Paragraphs()[1].Text)
	assert.Equal(t, string(paras[1].Raw), string(round.Paragraphs()[0].Raw))
}

func TestReplace_SplicesNewMarkup(t *testing.T) {
	data := buildDocx(t, paraXML("один")+paraXML("два")+paraXML("три"))
	doc, err := Parse(data)
	require.NoError(t, err)

	doc.Replace(1, []byte(TextParagraphXML("замена")))

	var out bytes.Buffer
	_, err = doc.WriteTo(&out)
	require.NoError(t, err)

	round, err := Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, 3, round.Len())
	assert.Equal(t, "один", round.Paragraphs()[0].Text)
	assert.Equal(t, "замена", round.Paragraphs()[1].Text)
	assert.Equal(t, "три", round.Paragraphs()[2].Text)
}

func TestTextParagraphXML_EscapesMarkup(t *testing.T) {
	xml := TextParagraphXML(`a < b & "c"`)
	assert.NotContains(t, xml, `a < b`)
	assert.True(t, strings.HasPrefix(xml, "<w:p>"))

	doc, err := Parse(buildDocx(t, ""))
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = doc.Subset(paragraphsFromText(`a < b & "c"`)).WriteTo(&out)
	require.NoError(t, err)

	round, err := Parse(out.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, round.Len())
	assert.Equal(t, `a < b & "c"`, round.Paragraphs()[0].Text)
}
