package shaderedit

import (
	"fmt"
)

// decoding of the JSON shaped asset objects carried in frames.
// numbers arrive as float64, lists as []any, objects as map[string]any.

func ShaderAssetFromWire(pub map[string]any) (*ShaderAsset, error) {
	asset := NewShaderAsset()

	for stage, key := range map[Stage]string{StageVertex: "vertexShader", StageFragment: "fragmentShader"} {
		programPub, ok := pub[key].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("Asset is missing %s.", key)
		}
		program := asset.Program(stage)
		program.CommittedText, _ = programPub["text"].(string)
		if draft, ok := programPub["draft"].(string); ok {
			program.DraftText = draft
		} else {
			program.DraftText = program.CommittedText
		}
	}

	if useLightUniforms, ok := pub["useLightUniforms"].(bool); ok {
		asset.UseLightUniforms = useLightUniforms
	}

	if uniformPubs, ok := pub["uniforms"].([]any); ok {
		for _, uniformPub := range uniformPubs {
			uniform, err := UniformFromWire(uniformPub)
			if err != nil {
				return nil, err
			}
			if err := asset.AddUniform(uniform); err != nil {
				return nil, err
			}
		}
	}

	if attributePubs, ok := pub["attributes"].([]any); ok {
		for _, attributePub := range attributePubs {
			attribute, err := AttributeFromWire(attributePub)
			if err != nil {
				return nil, err
			}
			if err := asset.AddAttribute(attribute); err != nil {
				return nil, err
			}
		}
	}

	return asset, nil
}

func UniformFromWire(raw any) (*Uniform, error) {
	uniformPub, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("Uniform must be an object: %T", raw)
	}
	id, err := wireId(uniformPub["id"])
	if err != nil {
		return nil, err
	}
	name, _ := uniformPub["name"].(string)
	typeStr, _ := uniformPub["type"].(string)
	uniformType, err := ParseUniformType(typeStr)
	if err != nil {
		return nil, err
	}
	var value UniformValue
	if rawValue, ok := uniformPub["value"]; ok && rawValue != nil {
		value, err = UniformValueFromWire(uniformType, rawValue)
		if err != nil {
			return nil, err
		}
	} else {
		value = DefaultUniformValue(uniformType)
	}
	return &Uniform{
		Id:    id,
		Name:  name,
		Type:  uniformType,
		Value: value,
	}, nil
}

func AttributeFromWire(raw any) (*Attribute, error) {
	attributePub, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("Attribute must be an object: %T", raw)
	}
	id, err := wireId(attributePub["id"])
	if err != nil {
		return nil, err
	}
	name, _ := attributePub["name"].(string)
	attributeType, _ := attributePub["type"].(string)
	return &Attribute{
		Id:   id,
		Name: name,
		Type: attributeType,
	}, nil
}

// ids are strings, but some services send small integer ids
func wireId(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("Id must not be empty.")
		}
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("Id must be an integer: %v", v)
		}
		return fmt.Sprintf("%d", int64(v)), nil
	default:
		return "", fmt.Errorf("Id must be a string: %T", raw)
	}
}

func (self *Uniform) Wire() map[string]any {
	return map[string]any{
		"id":    self.Id,
		"name":  self.Name,
		"type":  string(self.Type),
		"value": self.Value.Wire(),
	}
}

func (self *Attribute) Wire() map[string]any {
	return map[string]any{
		"id":   self.Id,
		"name": self.Name,
		"type": self.Type,
	}
}
