package progress

import "io"

// Writer counts the bytes written through it and reports the running total
// after every write. It sits between the remote read side and the local
// file so transfers report progress without either side knowing about it.
type Writer struct {
	W        io.Writer
	Callback func(total int64)
	total    int64
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.W.Write(p)
	w.total += int64(n)
	if w.Callback != nil && n > 0 {
		w.Callback(w.total)
	}
	return n, err
}

// Total returns the bytes written so far.
func (w *Writer) Total() int64 {
	return w.total
}
