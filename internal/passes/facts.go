package passes

import "fmt"

// Doc is the documentation comment attached to a case branch.
type Doc struct {
	Text string `msgpack:"text"`
}

func (d *Doc) String() string { return fmt.Sprintf("doc %q", d.Text) }

// Ignored tells whether a binder discards its value.
type Ignored struct {
	Blank bool `msgpack:"blank"`
}

func (i *Ignored) String() string {
	if i.Blank {
		return "ignored"
	}
	return "bound"
}

// TailPosition tells whether an expression is in tail position of the
// enclosing function.
type TailPosition struct {
	Tail bool `msgpack:"tail"`
}

func (t *TailPosition) String() string {
	if t.Tail {
		return "tail"
	}
	return "not-tail"
}
