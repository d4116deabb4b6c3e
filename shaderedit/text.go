package shaderedit

import (
	"fmt"
	"strings"
	"sync"
)

// the text editing widget for one stage. The edit operation payload is opaque
// to the applier; only the editor interprets it.
type TextEditor interface {
	CurrentText() string
	ReceiveEditOperation(operation any) error
	SetText(text string)
}

type TextOpKind string

const (
	TextOpRetain TextOpKind = "retain"
	TextOpInsert TextOpKind = "insert"
	TextOpDelete TextOpKind = "delete"
)

type TextOp struct {
	Kind TextOpKind
	// rune count for retain and delete
	Amount int
	// inserted text for insert
	Text string
}

// a sequence of ops walked over the text from the start.
// text past the last op is retained.
type TextOperation struct {
	Ops []TextOp
}

// decodes the `{ops: [{type, attributes: {amount|text}}]}` payload
func TextOperationFromWire(raw any) (*TextOperation, error) {
	operationPub, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("Operation must be an object: %T", raw)
	}
	opPubs, ok := operationPub["ops"].([]any)
	if !ok {
		return nil, fmt.Errorf("Operation is missing ops.")
	}
	operation := &TextOperation{}
	for _, opPub := range opPubs {
		opMap, ok := opPub.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("Op must be an object: %T", opPub)
		}
		opType, _ := opMap["type"].(string)
		attributes, _ := opMap["attributes"].(map[string]any)
		switch kind := TextOpKind(opType); kind {
		case TextOpRetain, TextOpDelete:
			amount, err := wireFloat(attributes["amount"])
			if err != nil {
				return nil, err
			}
			if amount < 0 || amount != float64(int(amount)) {
				return nil, fmt.Errorf("Op amount must be a non-negative integer: %v", amount)
			}
			operation.Ops = append(operation.Ops, TextOp{Kind: kind, Amount: int(amount)})
		case TextOpInsert:
			text, ok := attributes["text"].(string)
			if !ok {
				return nil, fmt.Errorf("Insert op is missing text.")
			}
			operation.Ops = append(operation.Ops, TextOp{Kind: kind, Text: text})
		default:
			return nil, fmt.Errorf("Unknown op type: %s", opType)
		}
	}
	return operation, nil
}

func (self *TextOperation) Wire() map[string]any {
	opPubs := make([]any, 0, len(self.Ops))
	for _, op := range self.Ops {
		var attributes map[string]any
		switch op.Kind {
		case TextOpInsert:
			attributes = map[string]any{"text": op.Text}
		default:
			attributes = map[string]any{"amount": float64(op.Amount)}
		}
		opPubs = append(opPubs, map[string]any{
			"type":       string(op.Kind),
			"attributes": attributes,
		})
	}
	return map[string]any{"ops": opPubs}
}

func (self *TextOperation) Apply(text string) (string, error) {
	runes := []rune(text)
	var b strings.Builder
	i := 0
	for _, op := range self.Ops {
		switch op.Kind {
		case TextOpRetain:
			if len(runes) < i+op.Amount {
				return "", fmt.Errorf("Retain past end of text: %d < %d", len(runes), i+op.Amount)
			}
			b.WriteString(string(runes[i : i+op.Amount]))
			i += op.Amount
		case TextOpDelete:
			if len(runes) < i+op.Amount {
				return "", fmt.Errorf("Delete past end of text: %d < %d", len(runes), i+op.Amount)
			}
			i += op.Amount
		case TextOpInsert:
			b.WriteString(op.Text)
		}
	}
	b.WriteString(string(runes[i:]))
	return b.String(), nil
}

// a headless `TextEditor`
type TextBuffer struct {
	mutex sync.Mutex
	text  string
}

func NewTextBuffer(text string) *TextBuffer {
	return &TextBuffer{
		text: text,
	}
}

func (self *TextBuffer) CurrentText() string {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.text
}

func (self *TextBuffer) SetText(text string) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.text = text
}

// on error the text is unchanged
func (self *TextBuffer) ReceiveEditOperation(raw any) error {
	var operation *TextOperation
	switch v := raw.(type) {
	case *TextOperation:
		operation = v
	default:
		var err error
		operation, err = TextOperationFromWire(raw)
		if err != nil {
			return err
		}
	}

	self.mutex.Lock()
	defer self.mutex.Unlock()
	text, err := operation.Apply(self.text)
	if err != nil {
		return err
	}
	self.text = text
	return nil
}

// the single replace operation that turns `before` into `after`
func TextOperationFromDiff(before string, after string) *TextOperation {
	a := []rune(before)
	b := []rune(after)
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix += 1
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix += 1
	}

	operation := &TextOperation{}
	if 0 < prefix {
		operation.Ops = append(operation.Ops, TextOp{Kind: TextOpRetain, Amount: prefix})
	}
	if deleted := len(a) - prefix - suffix; 0 < deleted {
		operation.Ops = append(operation.Ops, TextOp{Kind: TextOpDelete, Amount: deleted})
	}
	if inserted := b[prefix : len(b)-suffix]; 0 < len(inserted) {
		operation.Ops = append(operation.Ops, TextOp{Kind: TextOpInsert, Text: string(inserted)})
	}
	if 0 < suffix {
		operation.Ops = append(operation.Ops, TextOp{Kind: TextOpRetain, Amount: suffix})
	}
	return operation
}
