package shaderedit

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// command names broadcast by the project service for shader assets
const (
	CommandSetProperty          = "setProperty"
	CommandNewUniform           = "newUniform"
	CommandDeleteUniform        = "deleteUniform"
	CommandSetUniformProperty   = "setUniformProperty"
	CommandNewAttribute         = "newAttribute"
	CommandDeleteAttribute      = "deleteAttribute"
	CommandSetAttributeProperty = "setAttributeProperty"
	CommandEditVertexShader     = "editVertexShader"
	CommandSaveVertexShader     = "saveVertexShader"
	CommandEditFragmentShader   = "editFragmentShader"
	CommandSaveFragmentShader   = "saveFragmentShader"
)

const PropertyUseLightUniforms = "useLightUniforms"

// newer project services may send commands this client does not know.
// these are ignored.
var ErrUnknownCommand = errors.New("Unknown command.")

// a known command whose arguments do not decode. These are ignored like unknown commands.
var ErrMalformedCommand = errors.New("Malformed command.")

type Command interface {
	CommandName() string
}

type SetPropertyCommand struct {
	Path  string
	Value any
}

type NewUniformCommand struct {
	Uniform *Uniform
}

type DeleteUniformCommand struct {
	Id string
}

type SetUniformPropertyCommand struct {
	Id    string
	Key   string
	Value any
}

type NewAttributeCommand struct {
	Attribute *Attribute
}

type DeleteAttributeCommand struct {
	Id string
}

type SetAttributePropertyCommand struct {
	Id    string
	Key   string
	Value any
}

type EditShaderCommand struct {
	Stage Stage
	// opaque to the applier, interpreted by the stage's `TextEditor`
	Operation any
}

type SaveShaderCommand struct {
	Stage Stage
}

func (self *SetPropertyCommand) CommandName() string          { return CommandSetProperty }
func (self *NewUniformCommand) CommandName() string           { return CommandNewUniform }
func (self *DeleteUniformCommand) CommandName() string        { return CommandDeleteUniform }
func (self *SetUniformPropertyCommand) CommandName() string   { return CommandSetUniformProperty }
func (self *NewAttributeCommand) CommandName() string         { return CommandNewAttribute }
func (self *DeleteAttributeCommand) CommandName() string      { return CommandDeleteAttribute }
func (self *SetAttributePropertyCommand) CommandName() string { return CommandSetAttributeProperty }

func (self *EditShaderCommand) CommandName() string {
	switch self.Stage {
	case StageVertex:
		return CommandEditVertexShader
	default:
		return CommandEditFragmentShader
	}
}

func (self *SaveShaderCommand) CommandName() string {
	switch self.Stage {
	case StageVertex:
		return CommandSaveVertexShader
	default:
		return CommandSaveFragmentShader
	}
}

type commandDecoder func(args []any) (Command, error)

var commandDecoders = map[string]commandDecoder{
	CommandSetProperty: func(args []any) (Command, error) {
		path, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return &SetPropertyCommand{Path: path, Value: optionalArg(args, 1)}, nil
	},
	CommandNewUniform: func(args []any) (Command, error) {
		uniform, err := UniformFromWire(optionalArg(args, 0))
		if err != nil {
			return nil, err
		}
		return &NewUniformCommand{Uniform: uniform}, nil
	},
	CommandDeleteUniform: func(args []any) (Command, error) {
		id, err := idArg(args, 0)
		if err != nil {
			return nil, err
		}
		return &DeleteUniformCommand{Id: id}, nil
	},
	CommandSetUniformProperty: func(args []any) (Command, error) {
		id, key, err := idKeyArgs(args)
		if err != nil {
			return nil, err
		}
		return &SetUniformPropertyCommand{Id: id, Key: key, Value: optionalArg(args, 2)}, nil
	},
	CommandNewAttribute: func(args []any) (Command, error) {
		attribute, err := AttributeFromWire(optionalArg(args, 0))
		if err != nil {
			return nil, err
		}
		return &NewAttributeCommand{Attribute: attribute}, nil
	},
	CommandDeleteAttribute: func(args []any) (Command, error) {
		id, err := idArg(args, 0)
		if err != nil {
			return nil, err
		}
		return &DeleteAttributeCommand{Id: id}, nil
	},
	CommandSetAttributeProperty: func(args []any) (Command, error) {
		id, key, err := idKeyArgs(args)
		if err != nil {
			return nil, err
		}
		return &SetAttributePropertyCommand{Id: id, Key: key, Value: optionalArg(args, 2)}, nil
	},
	CommandEditVertexShader: func(args []any) (Command, error) {
		return editShaderCommand(StageVertex, args)
	},
	CommandSaveVertexShader: func(args []any) (Command, error) {
		return &SaveShaderCommand{Stage: StageVertex}, nil
	},
	CommandEditFragmentShader: func(args []any) (Command, error) {
		return editShaderCommand(StageFragment, args)
	},
	CommandSaveFragmentShader: func(args []any) (Command, error) {
		return &SaveShaderCommand{Stage: StageFragment}, nil
	},
}

// the command names this client understands, sorted
func CommandNames() []string {
	names := maps.Keys(commandDecoders)
	slices.Sort(names)
	return names
}

// returns `ErrUnknownCommand` for names outside the vocabulary
// and an error wrapping `ErrMalformedCommand` for bad arguments
func DecodeCommand(name string, args []any) (Command, error) {
	decoder, ok := commandDecoders[name]
	if !ok {
		return nil, ErrUnknownCommand
	}
	command, err := decoder(args)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %s", ErrMalformedCommand, name, err)
	}
	return command, nil
}

func editShaderCommand(stage Stage, args []any) (Command, error) {
	operation := optionalArg(args, 0)
	if operation == nil {
		return nil, errors.New("Missing operation.")
	}
	return &EditShaderCommand{Stage: stage, Operation: operation}, nil
}

func optionalArg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func stringArg(args []any, i int) (string, error) {
	s, ok := optionalArg(args, i).(string)
	if !ok {
		return "", fmt.Errorf("Argument %d must be a string.", i)
	}
	return s, nil
}

func idArg(args []any, i int) (string, error) {
	return wireId(optionalArg(args, i))
}

func idKeyArgs(args []any) (id string, key string, err error) {
	id, err = idArg(args, 0)
	if err != nil {
		return
	}
	key, err = stringArg(args, 1)
	return
}
