// Package assets provides the CSS styles and HTML templates used to lay out
// job-description documents.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles and template sets (go:embed)
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── AssetResolver     - custom first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}/
//	        └── document.html
//
// A template set's document.html holds the page markup at top level and
// defines the "header" and "footer" partials repeated on every page.
//
// Asset names are validated: no separators, no dots. FilesystemLoader
// resolves symlinks and refuses paths that escape basePath.
package assets
