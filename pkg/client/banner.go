package client

// Banner is the single error line a client shows above the tree. A fetch
// failure clears on the next successful fetch; an action failure stays
// until the next action.
type Banner struct {
	fetch  string
	action string
}

// Fetched records the outcome of reloading the tree.
func (b *Banner) Fetched(err error) {
	b.fetch = ""
	if err != nil {
		b.fetch = Message(err, "fetch tasks")
	}
}

// Acted records the outcome of a mutation such as "create task".
func (b *Banner) Acted(err error, action string) {
	b.action = ""
	if err != nil {
		b.action = Message(err, action)
	}
}

// Rejected shows a form validation error.
func (b *Banner) Rejected(err error) {
	b.action = err.Error()
}

// Text returns the message to show, or "" when all is well.
func (b *Banner) Text() string {
	if b.action != "" {
		return b.action
	}
	return b.fetch
}
