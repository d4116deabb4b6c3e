package shaderedit

import (
	"errors"
	"fmt"
)

var ErrUnknownUniform = errors.New("Unknown uniform.")
var ErrUnknownAttribute = errors.New("Unknown attribute.")
var ErrDuplicateId = errors.New("Duplicate id.")

// an operation named an entity that the local model does not hold, or
// tried to create one it already holds. Either way the local model is out of sync
// with the project service.
type ContractError struct {
	Command string
	Id      string
	Err     error
}

func (self *ContractError) Error() string {
	if self.Command == "" {
		return fmt.Sprintf("%s (%s)", self.Err, self.Id)
	}
	return fmt.Sprintf("%s: %s (%s)", self.Command, self.Err, self.Id)
}

func (self *ContractError) Unwrap() error {
	return self.Err
}

func contractViolation(command string, id string, err error) error {
	contractErr := &ContractError{
		Command: command,
		Id:      id,
		Err:     err,
	}
	if contractPanics {
		panic(contractErr)
	}
	return contractErr
}
