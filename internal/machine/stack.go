package machine

// Call stack size limits.
const (
	MinStackSize = 12
	MaxStackSize = 16
)

// stack is a bounded call stack of return addresses.
type stack struct {
	entries  [MaxStackSize]uint16
	depth    int
	capacity int
}

func (s *stack) push(address uint16) error {
	if s.depth >= s.capacity {
		return ErrStackOverflow
	}
	s.entries[s.depth] = address
	s.depth++
	return nil
}

func (s *stack) pop() (uint16, error) {
	if s.depth == 0 {
		return 0, ErrStackUnderflow
	}
	s.depth--
	return s.entries[s.depth], nil
}

func (s *stack) reset() {
	s.entries = [MaxStackSize]uint16{}
	s.depth = 0
}

// values returns the stack entries from bottom to top.
func (s *stack) values() []uint16 {
	values := make([]uint16, s.depth)
	copy(values, s.entries[:s.depth])
	return values
}
