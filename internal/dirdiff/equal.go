package dirdiff

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

const chunkSize = 64 * 1024

// smallFileThreshold is a var so tests can exercise the chunked path with
// small fixtures.
var smallFileThreshold int64 = 1 << 20

// filesEqual reports whether two regular files hold identical bytes. The
// check is tiered: size mismatch is decisive, small files are read whole,
// large files are streamed in chunks with one reader per side so neither
// file is ever fully in memory.
func filesEqual(leftPath, rightPath string) (bool, error) {
	leftInfo, err := os.Stat(leftPath)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", leftPath, err)
	}
	rightInfo, err := os.Stat(rightPath)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", rightPath, err)
	}
	if leftInfo.IsDir() || rightInfo.IsDir() {
		return leftInfo.IsDir() == rightInfo.IsDir(), nil
	}
	if leftInfo.Size() != rightInfo.Size() {
		return false, nil
	}
	if leftInfo.Size() < smallFileThreshold {
		return wholeFilesEqual(leftPath, rightPath)
	}
	return chunkedEqual(leftPath, rightPath)
}

func wholeFilesEqual(leftPath, rightPath string) (bool, error) {
	left, err := os.ReadFile(leftPath)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", leftPath, err)
	}
	right, err := os.ReadFile(rightPath)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rightPath, err)
	}
	return bytes.Equal(left, right), nil
}

type fileChunk struct {
	data []byte
	err  error
}

// chunkedEqual streams both files concurrently and compares chunk pairs in
// file order. The first mismatching pair decides; equality requires both
// sides to reach end of file together.
func chunkedEqual(leftPath, rightPath string) (bool, error) {
	done := make(chan struct{})
	defer close(done)
	leftCh := readChunks(leftPath, done)
	rightCh := readChunks(rightPath, done)

	for {
		left, leftOK := <-leftCh
		right, rightOK := <-rightCh
		if !leftOK && !rightOK {
			return true, nil
		}
		if leftOK != rightOK {
			// One side ended early; sizes matched at stat time, so the
			// file changed underneath us. Report unequal.
			return false, nil
		}
		if left.err != nil {
			return false, left.err
		}
		if right.err != nil {
			return false, right.err
		}
		if !bytes.Equal(left.data, right.data) {
			return false, nil
		}
	}
}

// readChunks reads path in chunkSize pieces. The channel closes at end of
// file; a read failure is delivered as the final chunk. done unblocks the
// reader when the consumer stops early.
func readChunks(path string, done <-chan struct{}) <-chan fileChunk {
	ch := make(chan fileChunk)
	go func() {
		defer close(ch)
		f, err := os.Open(path)
		if err != nil {
			select {
			case ch <- fileChunk{err: fmt.Errorf("open %s: %w", path, err)}:
			case <-done:
			}
			return
		}
		defer f.Close()
		for {
			buf := make([]byte, chunkSize)
			n, err := io.ReadFull(f, buf)
			if n > 0 {
				select {
				case ch <- fileChunk{data: buf[:n]}:
				case <-done:
					return
				}
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return
			}
			if err != nil {
				select {
				case ch <- fileChunk{err: fmt.Errorf("read %s: %w", path, err)}:
				case <-done:
				}
				return
			}
		}
	}()
	return ch
}
