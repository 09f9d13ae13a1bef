package entity

import "fmt"

// Tag labels an issue in the error log.
type Tag string

const (
	TagCritical Tag = "CRITICAL"
	TagData     Tag = "DATA"
	TagSave     Tag = "SAVE"
)

// Issue is one failure reported by a pipeline step. Only CRITICAL and SAVE
// issues of the primary sink abort a run; DATA issues leave the affected
// field at its default.
type Issue struct {
	Tag  Tag
	Step string
	Err  error
}

// NewIssue builds an issue for step.
func NewIssue(tag Tag, step string, err error) Issue {
	return Issue{Tag: tag, Step: step, Err: err}
}

// Line renders the issue as one error-log line, e.g.
// "[DATA] failed to extract biography: boom".
func (i Issue) Line() string {
	return fmt.Sprintf("[%s] failed to %s: %v", i.Tag, i.Step, i.Err)
}

func (i Issue) String() string {
	return i.Line()
}
