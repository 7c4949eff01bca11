package rfcindex

import "strings"

// BlockIterator walks the entry blocks of an index without splitting the
// whole document up front.
type BlockIterator struct {
	content string
	offset  int
	pos     int
	block   string
	done    bool
}

// SplitEntries returns an iterator over the blocks of content separated by
// EntryDelimiter. Like a plain split, it yields a final block after the last
// delimiter, which is empty for a well-formed index.
func SplitEntries(content string) *BlockIterator {
	it := &BlockIterator{content: content}
	it.Reset()

	return it
}

// Next advances to the next block. It returns false once every block has
// been visited.
func (it *BlockIterator) Next() bool {
	if it.done {
		return false
	}

	rest := it.content[it.offset:]
	if i := strings.Index(rest, EntryDelimiter); i >= 0 {
		it.block = rest[:i]
		it.offset += i + len(EntryDelimiter)
	} else {
		it.block = rest
		it.offset = len(it.content)
		it.done = true
	}

	it.pos++

	return true
}

// Block returns the current block.
func (it *BlockIterator) Block() string {
	return it.block
}

// Position returns the zero-based position of the current block.
func (it *BlockIterator) Position() int {
	return it.pos - 1
}

// Reset rewinds the iterator to the first block.
func (it *BlockIterator) Reset() {
	it.offset = 0
	it.pos = 0
	it.block = ""
	it.done = false
}
