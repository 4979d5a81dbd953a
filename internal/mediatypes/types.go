package mediatypes

// Kind represents the kind of a media file.
type Kind string

const (
	// KindImage represents a supported still image.
	KindImage Kind = "image"
	// KindVideo represents a supported video file.
	KindVideo Kind = "video"
	// KindOther represents an unknown or unsupported file.
	KindOther Kind = "other"
)

// SortOrder controls the final ordering of a listing.
type SortOrder string

const (
	// SortNewest orders items newest-modified-first (the default).
	SortNewest SortOrder = "newest"
	// SortOldest reverses the listing, oldest-modified-first.
	SortOldest SortOrder = "oldest"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".m4v":  true,
	".mp4":  true,
	".mov":  true,
	".webm": true,
}

// AnimatedExtensions maps extensions that must keep their animation and therefore
// never go through the thumbnail path.
var AnimatedExtensions = map[string]bool{
	".gif": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",

	".m4v":  "video/mp4",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// GetKind returns the Kind for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns KindOther if the extension is not recognized.
func GetKind(ext string) Kind {
	if ImageExtensions[ext] {
		return KindImage
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindOther
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsMediaFile returns true if the extension represents a supported media file.
func IsMediaFile(ext string) bool {
	return GetKind(ext) != KindOther
}
