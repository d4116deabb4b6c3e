package shaderedit

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// uniform type tags as they appear on the wire
type UniformType string

const (
	UniformTypeFloat   UniformType = "f"
	UniformTypeColor   UniformType = "c"
	UniformTypeVec2    UniformType = "v2"
	UniformTypeVec3    UniformType = "v3"
	UniformTypeVec4    UniformType = "v4"
	UniformTypeTexture UniformType = "t"
)

func ParseUniformType(typeStr string) (UniformType, error) {
	switch t := UniformType(typeStr); t {
	case UniformTypeFloat, UniformTypeColor, UniformTypeVec2, UniformTypeVec3, UniformTypeVec4, UniformTypeTexture:
		return t, nil
	default:
		return "", fmt.Errorf("Unknown uniform type: %s", typeStr)
	}
}

// the accepted component counts for vector shaped types. nil for scalar and texture types.
func (self UniformType) componentCounts() []int {
	switch self {
	case UniformTypeColor:
		return []int{3, 4}
	case UniformTypeVec2:
		return []int{2}
	case UniformTypeVec3:
		return []int{3}
	case UniformTypeVec4:
		return []int{4}
	default:
		return nil
	}
}

func (self UniformType) IsVector() bool {
	return self.componentCounts() != nil
}

// a uniform value whose shape always matches its type.
// the zero value is not valid; use `DefaultUniformValue` or `UniformValueFromWire`.
type UniformValue struct {
	uniformType UniformType
	number      float64
	components  []float64
	texture     string
}

func DefaultUniformValue(uniformType UniformType) UniformValue {
	switch uniformType {
	case UniformTypeFloat:
		return UniformValue{uniformType: uniformType}
	case UniformTypeColor:
		return UniformValue{uniformType: uniformType, components: []float64{1, 1, 1}}
	case UniformTypeTexture:
		return UniformValue{uniformType: uniformType}
	default:
		counts := uniformType.componentCounts()
		if counts == nil {
			panic(fmt.Errorf("Unknown uniform type: %s", uniformType))
		}
		return UniformValue{uniformType: uniformType, components: make([]float64, counts[0])}
	}
}

// validates the shape of a decoded wire value against `uniformType`
func UniformValueFromWire(uniformType UniformType, raw any) (UniformValue, error) {
	switch uniformType {
	case UniformTypeFloat:
		number, err := wireFloat(raw)
		if err != nil {
			return UniformValue{}, err
		}
		return UniformValue{uniformType: uniformType, number: number}, nil
	case UniformTypeTexture:
		texture, ok := raw.(string)
		if !ok {
			return UniformValue{}, fmt.Errorf("Texture value must be a string: %T", raw)
		}
		return UniformValue{uniformType: uniformType, texture: texture}, nil
	}

	counts := uniformType.componentCounts()
	if counts == nil {
		return UniformValue{}, fmt.Errorf("Unknown uniform type: %s", uniformType)
	}
	rawComponents, ok := raw.([]any)
	if !ok {
		return UniformValue{}, fmt.Errorf("%s value must be a list: %T", uniformType, raw)
	}
	if !slices.Contains(counts, len(rawComponents)) {
		return UniformValue{}, fmt.Errorf("%s value has %d components", uniformType, len(rawComponents))
	}
	components := make([]float64, len(rawComponents))
	for i, rawComponent := range rawComponents {
		component, err := wireFloat(rawComponent)
		if err != nil {
			return UniformValue{}, err
		}
		components[i] = component
	}
	return UniformValue{uniformType: uniformType, components: components}, nil
}

func wireFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		// form inputs may send numbers as text
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("Value must be a number: %T", raw)
	}
}

func (self UniformValue) Type() UniformType {
	return self.uniformType
}

func (self UniformValue) Float() (float64, bool) {
	if self.uniformType != UniformTypeFloat {
		return 0, false
	}
	return self.number, true
}

func (self UniformValue) Components() ([]float64, bool) {
	if !self.uniformType.IsVector() {
		return nil, false
	}
	return slices.Clone(self.components), true
}

func (self UniformValue) Texture() (string, bool) {
	if self.uniformType != UniformTypeTexture {
		return "", false
	}
	return self.texture, true
}

// the JSON shaped form used in frames
func (self UniformValue) Wire() any {
	switch self.uniformType {
	case UniformTypeFloat:
		return self.number
	case UniformTypeTexture:
		return self.texture
	default:
		components := make([]any, len(self.components))
		for i, component := range self.components {
			components[i] = component
		}
		return components
	}
}

func (self UniformValue) String() string {
	switch self.uniformType {
	case UniformTypeFloat:
		return strconv.FormatFloat(self.number, 'g', -1, 64)
	case UniformTypeTexture:
		return strconv.Quote(self.texture)
	default:
		parts := make([]string, len(self.components))
		for i, component := range self.components {
			parts[i] = strconv.FormatFloat(component, 'g', -1, 64)
		}
		return fmt.Sprintf("%s(%s)", self.uniformType, strings.Join(parts, ", "))
	}
}
