package assets

// TemplateSet holds the HTML template source for one document layout.
type TemplateSet struct {
	Name     string // set name or directory path
	Document string // document.html content
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"

// documentFile is the single required file of a template set.
const documentFile = "document.html"
