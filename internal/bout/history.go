package bout

// HistoryCapacity is how many event lines a bout retains.
const HistoryCapacity = 20

// History is a bounded event log. When full, the oldest entry is evicted.
type History struct {
	buf   []string
	start int
	n     int
}

// NewHistory creates a history holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		panic("bout: history capacity must be positive")
	}
	return &History{buf: make([]string, capacity)}
}

// Push appends an entry, evicting the oldest when full.
func (h *History) Push(entry string) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = entry
		h.n++
		return
	}
	h.buf[h.start] = entry
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of retained entries.
func (h *History) Len() int { return h.n }

// Entries returns a copy of the retained entries, oldest first.
func (h *History) Entries() []string {
	out := make([]string, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
