package shaderedit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
)

const ShaderAssetType = "shader"

var ErrSessionClosed = errors.New("Session closed.")
var ErrAssetTrashed = errors.New("Asset trashed.")
var ErrNotReady = errors.New("Asset not received yet.")

// the host side collaborators of a session
type SessionUi struct {
	VertexEditor   TextEditor
	FragmentEditor TextEditor
	Projection     Projection
	Previewer      Previewer
}

func NewHeadlessSessionUi() *SessionUi {
	return &SessionUi{
		VertexEditor:   NewTextBuffer(""),
		FragmentEditor: NewTextBuffer(""),
		Projection:     &NoopProjection{},
		Previewer:      NewStaticPreviewer(PreviewSourceAsset),
	}
}

// an editing session for one shader asset.
// The session owns the asset model from the snapshot until it closes. It closes
// when the asset is trashed, the transport disconnects, or the command log
// contradicts the model. A closed session accepts no further commands or edits.
//
// Projection and previewer callbacks are made with the session state locked and
// must not call back into the session.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	client  ProjectClient
	assetId string
	checker *StageChecker
	ui      *SessionUi
	log     LogFunction

	ready chan struct{}

	stateLock sync.Mutex
	clientId  string
	applier   *Applier
	closed    bool
	closeErr  error
}

func NewSession(
	ctx context.Context,
	client ProjectClient,
	assetId string,
	checker *StageChecker,
	ui *SessionUi,
) *Session {
	cancelCtx, cancel := context.WithCancel(ctx)
	session := &Session{
		ctx:     cancelCtx,
		cancel:  cancel,
		client:  client,
		assetId: assetId,
		checker: checker,
		ui:      ui,
		log:     SubLogFn(LogFn(1, "s"), assetId),
		ready:   make(chan struct{}),
	}
	go func() {
		<-cancelCtx.Done()
		session.close(ErrSessionClosed)
	}()
	return session
}

func (self *Session) AssetId() string {
	return self.assetId
}

func (self *Session) ClientId() string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.clientId
}

// closed when the snapshot has been applied
func (self *Session) Ready() <-chan struct{} {
	return self.ready
}

func (self *Session) Done() <-chan struct{} {
	return self.ctx.Done()
}

// the reason the session closed, or nil while open
func (self *Session) Err() error {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	if self.closeErr == nil && self.ctx.Err() != nil {
		return ErrSessionClosed
	}
	return self.closeErr
}

func (self *Session) Close() {
	self.close(ErrSessionClosed)
}

func (self *Session) close(err error) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	self.closeLocked(err)
}

// the context may be done before `closeLocked` runs
func (self *Session) isClosedLocked() bool {
	return self.closed || self.ctx.Err() != nil
}

func (self *Session) closeLocked(err error) {
	if self.closed {
		return
	}
	self.closed = true
	self.closeErr = err
	self.cancel()
	if err != ErrSessionClosed {
		glog.Infof("[s]%s closed = %s\n", self.assetId, err)
	} else {
		self.log("closed")
	}
}

// the transport is connected as `clientId`. Subscribes to the asset.
func (self *Session) Welcome(clientId string) {
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		self.clientId = clientId
	}()

	err := self.client.SubscribeAsset(self.assetId, ShaderAssetType, &AssetSubscription{
		OnAssetReceived: self.assetReceived,
		OnAssetEdited:   self.assetEdited,
		OnAssetTrashed:  self.assetTrashed,
	})
	if err != nil {
		self.close(err)
	}
}

// local mutation stops. The model keeps its last state.
func (self *Session) Disconnected(err error) {
	if err == nil {
		err = ErrSessionClosed
	}
	self.close(err)
}

func (self *Session) assetReceived(assetId string, pub map[string]any) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if self.isClosedLocked() {
		return
	}
	if self.applier != nil {
		self.log("ignore second snapshot")
		return
	}

	asset, err := ShaderAssetFromWire(pub)
	if err != nil {
		self.closeLocked(fmt.Errorf("Bad snapshot: %w", err))
		return
	}
	self.log("snapshot %d uniforms, %d attributes", asset.UniformCount(), len(asset.Attributes()))

	applier := NewApplier(
		asset,
		self.ui.VertexEditor,
		self.ui.FragmentEditor,
		self.checker,
		self.ui.Projection,
		self.ui.Previewer,
	)
	HandleError(func() {
		applier.Prime()
		self.applier = applier
		close(self.ready)
	}, func(err error) {
		self.closeLocked(err)
	})
}

func (self *Session) assetEdited(assetId string, command string, args []any) {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if self.isClosedLocked() {
		return
	}
	if self.applier == nil {
		// the service sends the snapshot before any command
		self.closeLocked(fmt.Errorf("%s before snapshot", command))
		return
	}

	HandleError(func() {
		if err := self.applier.Apply(command, args); err != nil {
			self.closeLocked(err)
		}
	}, func(err error) {
		self.closeLocked(err)
	})
}

func (self *Session) assetTrashed(assetId string) {
	self.close(ErrAssetTrashed)
}

func (self *Session) withApplier(do func(applier *Applier)) error {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	if self.applier == nil {
		if self.isClosedLocked() {
			return ErrSessionClosed
		}
		return ErrNotReady
	}
	do(self.applier)
	return nil
}

func (self *Session) StageView(stage Stage) (view StageView, err error) {
	err = self.withApplier(func(applier *Applier) {
		view = applier.StageView(stage)
	})
	return
}

func (self *Session) Program(stage Stage) (program ShaderProgram, err error) {
	err = self.withApplier(func(applier *Applier) {
		program = *applier.Asset().Program(stage)
	})
	return
}

func (self *Session) Uniforms() (uniforms []Uniform, err error) {
	err = self.withApplier(func(applier *Applier) {
		for _, uniform := range applier.Asset().Uniforms() {
			uniforms = append(uniforms, *uniform)
		}
	})
	return
}

func (self *Session) Attributes() (attributes []Attribute, err error) {
	err = self.withApplier(func(applier *Applier) {
		for _, attribute := range applier.Asset().Attributes() {
			attributes = append(attributes, *attribute)
		}
	})
	return
}

func (self *Session) UseLightUniforms() (useLightUniforms bool, err error) {
	err = self.withApplier(func(applier *Applier) {
		useLightUniforms = applier.Asset().UseLightUniforms
	})
	return
}

// local edits are submitted to the project service and only reach the model
// when the service broadcasts them back

func (self *Session) edit(command string, args []any, callback EditCallback) error {
	if self.ctx.Err() != nil {
		return ErrSessionClosed
	}
	glog.V(2).Infof("[s]%s submit %s\n", self.assetId, command)
	return self.client.EditAsset(self.assetId, command, args, callback)
}

func (self *Session) EditShader(stage Stage, operation *TextOperation, callback EditCallback) error {
	command := (&EditShaderCommand{Stage: stage}).CommandName()
	return self.edit(command, []any{operation.Wire()}, callback)
}

func (self *Session) SaveShader(stage Stage, callback EditCallback) error {
	command := (&SaveShaderCommand{Stage: stage}).CommandName()
	return self.edit(command, []any{}, callback)
}

func (self *Session) SetUseLightUniforms(useLightUniforms bool, callback EditCallback) error {
	return self.edit(CommandSetProperty, []any{PropertyUseLightUniforms, useLightUniforms}, callback)
}

func (self *Session) NewUniform(name string, callback EditCallback) error {
	return self.edit(CommandNewUniform, []any{name}, callback)
}

func (self *Session) DeleteUniform(id string, callback EditCallback) error {
	return self.edit(CommandDeleteUniform, []any{id}, callback)
}

// `value` may be a `UniformValue` or a JSON shaped value
func (self *Session) SetUniformProperty(id string, key string, value any, callback EditCallback) error {
	if uniformValue, ok := value.(UniformValue); ok {
		value = uniformValue.Wire()
	}
	return self.edit(CommandSetUniformProperty, []any{id, key, value}, callback)
}

func (self *Session) NewAttribute(name string, callback EditCallback) error {
	return self.edit(CommandNewAttribute, []any{name}, callback)
}

func (self *Session) DeleteAttribute(id string, callback EditCallback) error {
	return self.edit(CommandDeleteAttribute, []any{id}, callback)
}

func (self *Session) SetAttributeProperty(id string, key string, value string, callback EditCallback) error {
	return self.edit(CommandSetAttributeProperty, []any{id, key, value}, callback)
}
