package export

import "github.com/codr1/themeforge/internal/models"

// Artifact is rendered output ready to be saved or delivered.
type Artifact struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Render exports theme and attaches its download filename and MIME type.
func Render(theme models.ThemeConfig, format Format) (Artifact, error) {
	content, err := Export(theme, format)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Filename: Filename(theme, format),
		MIMEType: MIMEType(format),
		Content:  []byte(content),
	}, nil
}
