package classify

// BinaryExtensions lists lower-cased extensions, without the dot, whose
// content is never useful as model context.
var BinaryExtensions = map[string]bool{
	// Images
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true,
	"tiff": true, "tif": true, "ico": true, "webp": true, "avif": true,
	"heic": true, "psd": true, "ai": true, "sketch": true,
	// Audio and video
	"mp3": true, "wav": true, "flac": true, "ogg": true, "aac": true,
	"m4a": true, "mp4": true, "mov": true, "avi": true, "mkv": true,
	"webm": true, "wmv": true, "flv": true,
	// Archives
	"zip": true, "tar": true, "gz": true, "tgz": true, "bz2": true,
	"xz": true, "7z": true, "rar": true, "jar": true, "war": true,
	// Documents
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true, "odt": true,
	// Fonts
	"ttf": true, "otf": true, "woff": true, "woff2": true, "eot": true,
	// Executables and objects
	"exe": true, "dll": true, "so": true, "dylib": true, "bin": true,
	"o": true, "a": true, "lib": true, "class": true, "pyc": true,
	"pyo": true, "wasm": true, "apk": true, "dmg": true, "iso": true,
	// Databases
	"db": true, "sqlite": true, "sqlite3": true,
}
