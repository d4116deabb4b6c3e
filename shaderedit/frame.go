package shaderedit

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// every websocket message is one protobuf encoded `structpb.Struct` with a "type" field.
// field values are JSON shaped.

type FrameType string

const (
	FrameTypeAuth          FrameType = "auth"
	FrameTypeWelcome       FrameType = "welcome"
	FrameTypeSub           FrameType = "sub"
	FrameTypeUnsub         FrameType = "unsub"
	FrameTypeAssetReceived FrameType = "assetReceived"
	FrameTypeAssetEdited   FrameType = "assetEdited"
	FrameTypeAssetTrashed  FrameType = "assetTrashed"
	FrameTypeEditAsset     FrameType = "editAsset"
	FrameTypeAck           FrameType = "ack"
)

type Frame struct {
	Type   FrameType
	Fields map[string]any
}

func NewFrame(frameType FrameType, fields map[string]any) *Frame {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Frame{
		Type:   frameType,
		Fields: fields,
	}
}

func (self *Frame) String(key string) string {
	s, _ := self.Fields[key].(string)
	return s
}

func (self *Frame) List(key string) []any {
	l, _ := self.Fields[key].([]any)
	return l
}

func (self *Frame) Map(key string) map[string]any {
	m, _ := self.Fields[key].(map[string]any)
	return m
}

func EncodeFrame(frame *Frame) ([]byte, error) {
	fields := make(map[string]any, len(frame.Fields)+1)
	for key, value := range frame.Fields {
		fields[key] = value
	}
	fields["type"] = string(frame.Type)
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func RequireEncodeFrame(frame *Frame) []byte {
	b, err := EncodeFrame(frame)
	if err != nil {
		panic(err)
	}
	return b
}

func DecodeFrame(b []byte) (*Frame, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, err
	}
	fields := s.AsMap()
	frameType, ok := fields["type"].(string)
	if !ok || frameType == "" {
		return nil, fmt.Errorf("Frame is missing type.")
	}
	delete(fields, "type")
	return &Frame{
		Type:   FrameType(frameType),
		Fields: fields,
	}, nil
}
