package pattern

import "strings"

// DefaultIgnore is the built-in ignore list offered as the default value
// of the ignore setting.
var DefaultIgnore = Set{
	// Version control
	".git", ".hg", ".svn",
	// Dependencies
	"node_modules", "bower_components", "vendor",
	// Lock files
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "bun.lockb",
	"Cargo.lock", "Gemfile.lock", "composer.lock", "poetry.lock",
	// Build outputs
	"dist", "build", "out", "target",
	// Caches
	".cache", ".parcel-cache", ".sass-cache", ".npm", ".yarn", ".eslintcache",
	// Coverage
	"coverage", ".nyc_output",
	// Logs
	"*.log",
	"__tests__",
	// Editors
	".vscode", ".idea", "*.swp", "*.swo", ".vs",
	// Frameworks and tools
	".turbo", ".vercel", ".expo", ".next", ".nuxt", ".output", ".nx",
	// OS files
	".DS_Store", "Thumbs.db",
	// Temp
	"tmp", "temp",
	// Python
	"__pycache__", "*.py[cod]", "venv", ".venv", "*.egg-info",
	"tsconfig.tsbuildinfo",
	// Environment files
	".env", ".env.*",
	// Minified files and source maps
	"*.min.js", "*.min.css", "*.map",
}

// DefaultIgnoreString is DefaultIgnore in its comma-separated settings form.
var DefaultIgnoreString = strings.Join(DefaultIgnore, ", ")
