package core

// TemplateColumns is the header row of a blank result sheet.
var TemplateColumns = []string{"Name", "Grade", "Result"}

// templateSample is the example row written below the header.
var templateSample = []string{"Jane Doe", "78", string(StatusPass)}

// TemplateFileStem names downloaded sheet templates.
const TemplateFileStem = "result_template"

// sheetTemplate is a View over the template header and example row.
type sheetTemplate struct{}

func (sheetTemplate) Header() []string { return append([]string(nil), TemplateColumns...) }

func (sheetTemplate) Rows() [][]string {
	return [][]string{append([]string(nil), templateSample...)}
}

// SheetTemplate returns a blank result sheet in format f that ParseTable
// accepts as is.
func SheetTemplate(f Format) (*ExportFile, error) {
	data, err := Encode(sheetTemplate{}, f)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: TemplateFileStem + f.Extension(), Format: f, Data: data}, nil
}
