package connect

import "strconv"

// Recorder is an in-memory [Connector]. It keeps the live connections and
// counts revalidations per connection, which is what headless callers (the
// HTTP API, tests) need from a surface.
type Recorder struct {
	next        int
	live        map[Connection]Recorded
	order       []Connection
	revalidated map[Connection]int
}

// Recorded is a connection as seen by a [Recorder].
type Recorded struct {
	Source Handle
	Target Handle
	Style  Style
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		live:        make(map[Connection]Recorded),
		revalidated: make(map[Connection]int),
	}
}

// Connect records the connection and returns a sequential identifier.
func (r *Recorder) Connect(src, dst Handle, style Style) Connection {
	r.next++
	id := Connection("c" + strconv.Itoa(r.next))
	r.live[id] = Recorded{Source: src, Target: dst, Style: style}
	r.order = append(r.order, id)
	return id
}

// Revalidate counts a re-route of c.
func (r *Recorder) Revalidate(c Connection) {
	if _, ok := r.live[c]; ok {
		r.revalidated[c]++
	}
}

// Destroy forgets c.
func (r *Recorder) Destroy(c Connection) {
	delete(r.live, c)
}

// Live returns the connections that were not destroyed, in creation order.
func (r *Recorder) Live() []Recorded {
	out := make([]Recorded, 0, len(r.live))
	for _, id := range r.order {
		if c, ok := r.live[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Revalidations returns how often c was revalidated.
func (r *Recorder) Revalidations(c Connection) int { return r.revalidated[c] }

// TotalRevalidations returns the number of revalidations across all
// connections.
func (r *Recorder) TotalRevalidations() int {
	n := 0
	for _, v := range r.revalidated {
		n += v
	}
	return n
}

var _ Connector = (*Recorder)(nil)
