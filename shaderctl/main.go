package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/docopt/docopt-go"
	"github.com/fsnotify/fsnotify"

	"github.com/bringyour/shaderedit/shaderedit"
)

const LocalVersion = "0.0.0-local"

const ChunkExt = ".wgsl"

func main() {
	usage := `Shader asset control.

Chunks are read from <chunk_dir>/<name>.wgsl and are included with ShaderChunk(<name>).

Usage:
    shaderctl check <file> --stage=<stage> [--watch]
        [--chunk_dir=<chunk_dir>]
        [--config=<config>]
    shaderctl attach --project_url=<project_url> --asset=<asset_id>
        [--jwt=<jwt>]
        [--chunk_dir=<chunk_dir>]
        [--config=<config>]
    shaderctl commands

Options:
    -h --help                        Show this screen.
    --version                        Show version.
    --stage=<stage>                  vertex or fragment.
    --watch                          Check again when the file changes.
    --chunk_dir=<chunk_dir>
    --config=<config>                Yaml settings file.
    --project_url=<project_url>
    --asset=<asset_id>
    --jwt=<jwt>                      Session token. Prompted when omitted.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], RequireVersion())
	if err != nil {
		panic(err)
	}

	if check_, _ := opts.Bool("check"); check_ {
		check(opts)
	} else if attach_, _ := opts.Bool("attach"); attach_ {
		attach(opts)
	} else if commands_, _ := opts.Bool("commands"); commands_ {
		commands(opts)
	}
}

func RequireVersion() string {
	if version := os.Getenv("SHADEREDIT_VERSION"); version != "" {
		return version
	}
	return LocalVersion
}

func requireSettings(opts docopt.Opts) *shaderedit.SessionSettings {
	if configPath, err := opts.String("--config"); err == nil && configPath != "" {
		settings, err := shaderedit.LoadSessionSettings(configPath)
		if err != nil {
			panic(err)
		}
		return settings
	}
	return shaderedit.DefaultSessionSettings()
}

func requireChunks(opts docopt.Opts) shaderedit.MapChunkRegistry {
	chunks := shaderedit.MapChunkRegistry{}
	chunkDir, err := opts.String("--chunk_dir")
	if err != nil || chunkDir == "" {
		return chunks
	}
	entries, err := os.ReadDir(chunkDir)
	if err != nil {
		panic(err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ChunkExt {
			continue
		}
		chunkBytes, err := os.ReadFile(filepath.Join(chunkDir, entry.Name()))
		if err != nil {
			panic(err)
		}
		chunks[strings.TrimSuffix(entry.Name(), ChunkExt)] = string(chunkBytes)
	}
	return chunks
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
}

func check(opts docopt.Opts) {
	path, _ := opts.String("<file>")
	stageName, _ := opts.String("--stage")
	stage, err := shaderedit.ParseStage(stageName)
	if err != nil {
		panic(err)
	}
	watch, _ := opts.Bool("--watch")

	settings := requireSettings(opts)
	checker := settings.NewStageChecker(requireChunks(opts))

	valid := checkFile(checker, path, stage)
	if !watch {
		if !valid {
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		panic(err)
	}
	defer watcher.Close()

	// watch the directory since editors often replace the file on save
	absPath, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		panic(err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fmt.Printf("\n")
				checkFile(checker, path, stage)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Printf("watch error: %s\n", err)
		}
	}
}

func checkFile(checker *shaderedit.StageChecker, path string, stage shaderedit.Stage) bool {
	sourceBytes, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("%s: %s\n", path, err)
		return false
	}
	source := string(sourceBytes)

	valid, diagnostics := checker.Check(stage, source)
	if valid {
		fmt.Printf("%s: %s ok\n", path, stage)
		return true
	}

	lines := strings.Split(source, "\n")
	showContext := term.IsTerminal(int(os.Stdout.Fd()))
	for _, diagnostic := range diagnostics {
		fmt.Printf("%s:%d: %s: %s\n", path, diagnostic.Line, strings.ToLower(diagnostic.Severity), diagnostic.Message)
		if showContext && 1 <= diagnostic.Line && diagnostic.Line <= len(lines) {
			fmt.Printf("    %s\n", lines[diagnostic.Line-1])
		}
	}
	return false
}

func attach(opts docopt.Opts) {
	projectUrl, _ := opts.String("--project_url")
	assetId, _ := opts.String("--asset")

	jwt, _ := opts.String("--jwt")
	if jwt == "" {
		fmt.Print("Enter token: ")
		jwtBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			panic(err)
		}
		jwt = strings.TrimSpace(string(jwtBytes))
		fmt.Printf("\n")
	}

	projectJwt, err := shaderedit.ParseProjectJwtUnverified(jwt)
	if err != nil {
		panic(err)
	}

	settings := requireSettings(opts)

	ctx, cancel := signalContext()
	defer cancel()

	instanceId := shaderedit.NewId()
	fmt.Printf("project_id: %s\n", projectJwt.ProjectId)
	fmt.Printf("user: %s (%s)\n", projectJwt.UserName, projectJwt.UserId)
	fmt.Printf("instance_id: %s\n", instanceId)

	auth := &shaderedit.ProjectAuth{
		Jwt:        jwt,
		InstanceId: instanceId,
		AppVersion: RequireVersion(),
	}
	ui := shaderedit.NewHeadlessSessionUi()
	ui.Projection = &printProjection{}
	ui.Previewer = &printPreviewer{source: settings.PreviewSource}

	session := shaderedit.DialSession(ctx, projectUrl, auth, assetId, requireChunks(opts), ui, settings)

	select {
	case <-ctx.Done():
		session.Close()
	case <-session.Done():
	}

	if err := session.Err(); err != nil && err != shaderedit.ErrSessionClosed {
		fmt.Printf("closed: %s\n", err)
		os.Exit(1)
	}
}

func commands(opts docopt.Opts) {
	for _, name := range shaderedit.CommandNames() {
		fmt.Printf("%s\n", name)
	}
}

type printProjection struct {
}

func (self *printProjection) UseLightUniformsChanged(useLightUniforms bool) {
	fmt.Printf("useLightUniforms = %t\n", useLightUniforms)
}

func (self *printProjection) UniformAdded(uniform shaderedit.Uniform) {
	fmt.Printf("+uniform %s %s %s = %s\n", uniform.Id, uniform.Name, uniform.Type, uniform.Value)
}

func (self *printProjection) UniformRemoved(id string) {
	fmt.Printf("-uniform %s\n", id)
}

func (self *printProjection) UniformFieldChanged(uniform shaderedit.Uniform, key string) {
	fmt.Printf("uniform %s.%s (%s %s = %s)\n", uniform.Id, key, uniform.Name, uniform.Type, uniform.Value)
}

func (self *printProjection) UniformValueInputsReset(uniform shaderedit.Uniform) {
	fmt.Printf("uniform %s inputs %s = %s\n", uniform.Id, uniform.Type, uniform.Value)
}

func (self *printProjection) AttributeAdded(attribute shaderedit.Attribute) {
	fmt.Printf("+attribute %s %s %s\n", attribute.Id, attribute.Name, attribute.Type)
}

func (self *printProjection) AttributeRemoved(id string) {
	fmt.Printf("-attribute %s\n", id)
}

func (self *printProjection) AttributeFieldChanged(attribute shaderedit.Attribute, key string) {
	fmt.Printf("attribute %s.%s (%s %s)\n", attribute.Id, key, attribute.Name, attribute.Type)
}

func (self *printProjection) StageChanged(view shaderedit.StageView) {
	fmt.Printf("%s: %s (save enabled %t)\n", view.Stage, view.State, view.SaveEnabled())
	for _, diagnostic := range view.Diagnostics {
		fmt.Printf("    %s\n", diagnostic)
	}
}

type printPreviewer struct {
	source string
}

func (self *printPreviewer) PreviewSource() string {
	return self.source
}

func (self *printPreviewer) Refresh() {
	fmt.Printf("preview refresh\n")
}
