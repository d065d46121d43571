package urlparser

// defaultPorts maps a scheme to the port it uses when none is given.
var defaultPorts = map[string]int{
	"acap":     674,
	"afp":      548,
	"dict":     2628,
	"dns":      53,
	"ftp":      21,
	"git":      9418,
	"gopher":   70,
	"http":     80,
	"https":    443,
	"imap":     143,
	"ipp":      631,
	"ipps":     631,
	"irc":      194,
	"ircs":     6697,
	"ldap":     389,
	"ldaps":    636,
	"mms":      1755,
	"msrp":     2855,
	"mtqp":     1038,
	"nfs":      111,
	"nntp":     119,
	"nntps":    563,
	"pop":      110,
	"prospero": 1525,
	"redis":    6379,
	"rsync":    873,
	"rtsp":     554,
	"rtsps":    322,
	"rtspu":    5005,
	"sftp":     22,
	"smb":      445,
	"snmp":     161,
	"ssh":      22,
	"svn":      3690,
	"telnet":   23,
	"ventrilo": 3784,
	"vnc":      5900,
	"wais":     210,
	"ws":       80,
	"wss":      443,
}

// DefaultPort returns the well-known port of scheme.
func DefaultPort(scheme string) (int, bool) {
	port, ok := defaultPorts[scheme]
	return port, ok
}

// fileExtensions are the path suffixes reported as a target type.
var fileExtensions = setOf(
	// archives
	"7z", "a", "apk", "ar", "bz2", "cab", "cpio", "deb", "dmg", "egg", "gz", "iso", "jar", "lha", "mar",
	"pea", "rar", "rpm", "s7z", "shar", "tar", "tbz2", "tgz", "tlz", "war", "whl", "xpi", "zip", "zipx", "xz", "pak",
	// audio
	"aac", "aiff", "ape", "au", "flac", "gsm", "it", "m3u", "m4a", "mid", "mod", "mp3", "mpa", "pls", "ra",
	"s3m", "sid", "wav", "wma", "xm",
	// books
	"mobi", "epub", "azw1", "azw3", "azw4", "azw6", "azw", "cbr", "cbz",
	// code
	"c", "cc", "class", "clj", "cpp", "cs", "cxx", "el", "go", "h", "java", "lua", "m", "m4", "php", "pl", "po",
	"py", "rb", "rs", "sh", "swift", "vb", "vcxproj", "xcodeproj", "xml", "diff", "patch", "html", "js",
	// executables
	"exe", "msi", "bin", "command", "bat", "crx",
	// fonts
	"eot", "otf", "ttf", "woff", "woff2",
	// images
	"3dm", "3ds", "max", "bmp", "dds", "gif", "jpg", "jpeg", "png", "psd", "xcf", "tga", "thm", "tif", "tiff",
	"yuv", "ai", "eps", "ps", "svg", "dwg", "dxf", "gpx", "kml", "kmz", "webp",
	// spreadsheets
	"ods", "xls", "xlsx", "csv", "ics", "vcf",
	// slides
	"ppt", "odp",
	// documents
	"doc", "docx", "ebook", "log", "md", "msg", "odt", "org", "pages", "pdf", "rtf", "rst", "tex", "txt", "wpd", "wps",
	// video
	"3g2", "3gp", "aaf", "asf", "avchd", "avi", "drc", "flv", "m2v", "m4p", "m4v", "mkv", "mng", "mov", "mp2",
	"mp4", "mpe", "mpeg", "mpg", "mpv", "mxf", "nsv", "ogg", "ogv", "ogm", "qt", "rm", "rmvb", "roq", "srt",
	"svi", "vob", "webm", "wmv",
	// web
	"htm", "css", "jsx", "less", "scss", "wasm",
)

// IsFileExtension reports whether ext is a recognized file extension.
func IsFileExtension(ext string) bool {
	_, ok := fileExtensions[ext]
	return ok
}

func setOf(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
