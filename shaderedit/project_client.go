package shaderedit

import (
	"errors"
	"sync"

	"github.com/golang/glog"
)

// callbacks for one subscribed asset, made in server order
type AssetSubscription struct {
	OnAssetReceived func(assetId string, asset map[string]any)
	OnAssetEdited   func(assetId string, command string, args []any)
	OnAssetTrashed  func(assetId string)
}

type EditCallback = func(err error)

// the project service as seen by a session
type ProjectClient interface {
	SubscribeAsset(assetId string, assetType string, subscription *AssetSubscription) error
	UnsubscribeAsset(assetId string) error
	// the callback receives the service's acknowledgement. It may be nil.
	EditAsset(assetId string, command string, args []any, callback EditCallback) error
}

type SendFrameFunction = func(frame *Frame) error

// routes frames from a `ProjectTransport` to asset subscriptions and edit callbacks
type WsProjectClient struct {
	send SendFrameFunction

	stateLock     sync.Mutex
	closed        bool
	subscriptions map[string]*AssetSubscription
	pendingEdits  map[Id]EditCallback
}

func NewWsProjectClient(send SendFrameFunction) *WsProjectClient {
	return &WsProjectClient{
		send:          send,
		subscriptions: map[string]*AssetSubscription{},
		pendingEdits:  map[Id]EditCallback{},
	}
}

func (self *WsProjectClient) SubscribeAsset(assetId string, assetType string, subscription *AssetSubscription) error {
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		self.subscriptions[assetId] = subscription
	}()
	return self.send(NewFrame(FrameTypeSub, map[string]any{
		"assetId":   assetId,
		"assetType": assetType,
	}))
}

func (self *WsProjectClient) UnsubscribeAsset(assetId string) error {
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		delete(self.subscriptions, assetId)
	}()
	return self.send(NewFrame(FrameTypeUnsub, map[string]any{
		"assetId": assetId,
	}))
}

func (self *WsProjectClient) EditAsset(assetId string, command string, args []any, callback EditCallback) error {
	requestId := NewId()
	if callback != nil {
		closed := func() bool {
			self.stateLock.Lock()
			defer self.stateLock.Unlock()
			if !self.closed {
				self.pendingEdits[requestId] = callback
			}
			return self.closed
		}()
		if closed {
			return ErrSessionClosed
		}
	}
	if args == nil {
		args = []any{}
	}
	err := self.send(NewFrame(FrameTypeEditAsset, map[string]any{
		"requestId": requestId.String(),
		"assetId":   assetId,
		"command":   command,
		"args":      args,
	}))
	if err != nil {
		self.takePendingEdit(requestId)
	}
	return err
}

func (self *WsProjectClient) takePendingEdit(requestId Id) EditCallback {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	callback := self.pendingEdits[requestId]
	delete(self.pendingEdits, requestId)
	return callback
}

func (self *WsProjectClient) subscription(assetId string) *AssetSubscription {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.subscriptions[assetId]
}

// must be called from a single goroutine, in frame order
func (self *WsProjectClient) ReceiveFrame(frame *Frame) {
	switch frame.Type {
	case FrameTypeAck:
		requestId, err := ParseId(frame.String("requestId"))
		if err != nil {
			glog.V(1).Infof("[pc]drop ack = %s\n", err)
			return
		}
		callback := self.takePendingEdit(requestId)
		if callback == nil {
			return
		}
		var editErr error
		if message := frame.String("error"); message != "" {
			editErr = errors.New(message)
		}
		HandleError(func() {
			callback(editErr)
		})
	case FrameTypeAssetReceived, FrameTypeAssetEdited, FrameTypeAssetTrashed:
		assetId := frame.String("assetId")
		subscription := self.subscription(assetId)
		if subscription == nil {
			glog.V(1).Infof("[pc]drop %s for unsubscribed %s\n", frame.Type, assetId)
			return
		}
		switch frame.Type {
		case FrameTypeAssetReceived:
			if subscription.OnAssetReceived != nil {
				subscription.OnAssetReceived(assetId, frame.Map("asset"))
			}
		case FrameTypeAssetEdited:
			if subscription.OnAssetEdited != nil {
				subscription.OnAssetEdited(assetId, frame.String("command"), frame.List("args"))
			}
		case FrameTypeAssetTrashed:
			if subscription.OnAssetTrashed != nil {
				subscription.OnAssetTrashed(assetId)
			}
		}
	default:
		// forward compatible
		glog.V(1).Infof("[pc]ignore frame %s\n", frame.Type)
	}
}

// fails every pending edit. No further edits are accepted.
func (self *WsProjectClient) Disconnected() {
	var callbacks []EditCallback
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		self.closed = true
		for _, callback := range self.pendingEdits {
			callbacks = append(callbacks, callback)
		}
		clear(self.pendingEdits)
	}()
	for _, callback := range callbacks {
		HandleError(func() {
			callback(ErrSessionClosed)
		})
	}
}
