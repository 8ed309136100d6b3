package pytree

import "bytes"

// Render serializes the file with every class body permuted per SetOrder
// and every MarkStatic rewrite applied. With no order set the output is the
// input, except for a guaranteed trailing newline.
func (f *File) Render() []byte {
	var b bytes.Buffer
	pos := 0
	for _, c := range f.Classes {
		b.Write(f.Source[pos:c.bodyStart])
		b.Write(renderClass(f.Source, c))
		pos = c.bodyEnd
	}
	b.Write(f.Source[pos:])

	out := b.Bytes()
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}

// renderClass assembles one class body: original gaps stay in their slots,
// element spans move between them.
func renderClass(src []byte, c *Class) []byte {
	if len(c.Elements) == 0 {
		return src[c.bodyStart:c.bodyEnd]
	}

	perm := c.order
	if perm == nil {
		perm = make([]int, len(c.Elements))
		for i := range perm {
			perm[i] = i
		}
	}

	var b bytes.Buffer
	b.Write(src[c.bodyStart:c.Elements[0].start])
	for slot, idx := range perm {
		b.Write(elementText(src, c.Elements[idx]))
		if slot < len(c.Elements)-1 {
			b.Write(src[c.Elements[slot].end:c.Elements[slot+1].start])
		}
	}
	last := c.Elements[len(c.Elements)-1]
	b.Write(src[last.end:c.bodyEnd])
	return b.Bytes()
}

func elementText(src []byte, e *Element) []byte {
	if e.Inner != nil && e.Inner.bodyEnd > 0 {
		var b bytes.Buffer
		b.Write(src[e.start:e.Inner.bodyStart])
		b.Write(renderClass(src, e.Inner))
		b.Write(src[e.Inner.bodyEnd:e.end])
		return b.Bytes()
	}
	if e.makeStatic && e.selfEnd > 0 {
		return staticText(src, e)
	}
	return src[e.start:e.end]
}

// staticText rewrites a method span to its static form: an @staticmethod
// decorator line above the def and the self parameter removed.
func staticText(src []byte, e *Element) []byte {
	var b bytes.Buffer
	b.Write(src[e.start:e.defOff])
	b.WriteString("@staticmethod\n")
	b.Write(lineIndent(src, e.defOff))
	b.Write(src[e.defOff:e.selfStart])
	b.Write(src[e.selfEnd:e.end])
	return b.Bytes()
}

// lineIndent returns the text between the start of the line containing off
// and off itself: the indentation to reuse for an inserted line.
func lineIndent(src []byte, off int) []byte {
	start := off
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	return src[start:off]
}
