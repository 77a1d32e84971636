package intake

// File is one user-selected file. Size is the raw byte size as reported by the picker.
type File struct {
	Name string
	Size int64
	Data []byte
}

// NewFile builds a File whose Size matches len(data).
func NewFile(name string, data []byte) File {
	return File{Name: name, Size: int64(len(data)), Data: data}
}

// Names returns the file names in order.
func Names(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
