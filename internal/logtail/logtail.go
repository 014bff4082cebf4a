package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const maxLineBytes = 1024 * 1024

// Follower keeps the last lines of a growing log file. Each Poll reads only
// the bytes appended since the previous call; a file that shrank is reread
// from the start. A Follower is safe for concurrent use.
type Follower struct {
	mu      sync.Mutex
	path    string
	offset  int64
	partial []byte
	ring    *ring
}

// NewFollower returns a Follower keeping at most maxLines lines of path.
func NewFollower(path string, maxLines int) *Follower {
	if maxLines <= 0 {
		maxLines = 200
	}
	return &Follower{path: path, ring: newRing(maxLines)}
}

// Path returns the followed file.
func (f *Follower) Path() string {
	return f.path
}

// Poll picks up appended lines and reports whether anything changed.
func (f *Follower) Poll() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return false, fmt.Errorf("stat log: %w", err)
	}
	size := info.Size()
	if size < f.offset {
		f.offset = 0
		f.partial = nil
		f.ring.reset()
	}
	if size == f.offset {
		return false, nil
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return false, fmt.Errorf("seek log: %w", err)
	}
	chunk, err := io.ReadAll(io.LimitReader(file, size-f.offset))
	if err != nil {
		return false, fmt.Errorf("read log: %w", err)
	}
	f.offset += int64(len(chunk))

	data := append(f.partial, chunk...)
	changed := false
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		f.ring.push(string(bytes.TrimRight(data[:i], "\r")))
		data = data[i+1:]
		changed = true
	}
	if len(data) > maxLineBytes {
		data = data[len(data)-maxLineBytes:]
	}
	f.partial = append([]byte(nil), data...)
	return changed, nil
}

// Lines returns the retained lines, oldest first.
func (f *Follower) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ring.lines()
}

type ring struct {
	buf   []string
	limit int
	next  int
	count int
}

func newRing(limit int) *ring {
	return &ring{limit: limit}
}

func (r *ring) push(line string) {
	if r.limit <= 0 {
		r.buf = append(r.buf, line)
		r.count++
		return
	}
	if r.buf == nil {
		r.buf = make([]string, r.limit)
	}
	r.buf[r.next] = line
	r.next = (r.next + 1) % r.limit
	if r.count < r.limit {
		r.count++
	}
}

func (r *ring) lines() []string {
	if r.count == 0 {
		return nil
	}
	if r.limit <= 0 {
		out := make([]string, len(r.buf))
		copy(out, r.buf)
		return out
	}
	out := make([]string, r.count)
	if r.count == r.limit {
		for i := 0; i < r.count; i++ {
			out[i] = r.buf[(r.next+i)%r.limit]
		}
	} else {
		copy(out, r.buf[:r.count])
	}
	return out
}

func (r *ring) reset() {
	r.buf = nil
	r.next = 0
	r.count = 0
}
