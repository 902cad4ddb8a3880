package transport

import (
	"bufio"
	"io"
	"os"
)

// Stdio returns the process's standard streams as the caller link, read
// through a buffer of blockSize bytes. The writer is buffered; event.Channel
// flushes it after every frame.
func Stdio(blockSize int) (io.Reader, *bufio.Writer) {
	return bufio.NewReaderSize(os.Stdin, blockSize), bufio.NewWriterSize(os.Stdout, 64<<10)
}
