// Package console interprets developer commands that manipulate the scene.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/Faultbox/rat-engine/internal/engine/scene"
	"github.com/Faultbox/rat-engine/internal/logger"
)

// Command errors.
var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
	ErrBadArgument     = errors.New("bad argument")
	ErrNoObject        = errors.New("no such object")
)

// Target is the engine state commands act on.
type Target interface {
	// LoadObject spawns an object from its asset name and returns the
	// unique name it was given.
	LoadObject(asset string) (string, error)
	RemoveObject(name string) error
	Object(name string) *scene.Object
	Objects() []*scene.Object
	// Screenshot saves the next finished frame.
	Screenshot()
	Quit()
}

var spewConfig = func() *spew.ConfigState {
	c := spew.NewDefaultConfig()
	c.DisableCapacities = true
	c.DisablePointerAddresses = true
	c.MaxDepth = 3
	return c
}()

type handler struct {
	usage string
	args  int
	run   func(c *Console, args []string) error
}

// Console executes command lines against a Target. Output goes to the
// logger so it shows up in the overlay history.
type Console struct {
	target Target
	log    *zap.Logger
	cmds   map[string]handler
	last   string
}

// New creates a console bound to target.
func New(target Target) *Console {
	c := &Console{target: target, log: logger.Named("console")}
	c.cmds = map[string]handler{
		"obj load":   {"obj load <asset>", 1, (*Console).objLoad},
		"obj list":   {"obj list", 0, (*Console).objList},
		"obj remove": {"obj remove <name>", 1, (*Console).objRemove},
		"obj moveto": {"obj moveto <name> <x> <y> <z>", 4, (*Console).objMoveTo},
		"obj rotate": {"obj rotate <name> <x> <y> <z>", 4, (*Console).objRotate},
		"obj info":   {"obj info <name>", 1, (*Console).objInfo},
		"screenshot": {"screenshot", 0, (*Console).screenshot},
		"help":       {"help", 0, (*Console).help},
		"quit":       {"quit", 0, (*Console).quit},
	}
	return c
}

// Last returns the most recent line of command output.
func (c *Console) Last() string {
	return c.last
}

func (c *Console) print(format string, args ...any) {
	c.last = fmt.Sprintf(format, args...)
	c.log.Info(c.last)
}

// Execute runs one command line. Errors are logged and returned; they
// never stop the engine.
func (c *Console) Execute(line string) error {
	err := c.execute(line)
	if err != nil {
		c.last = err.Error()
		c.log.Warn("command failed", zap.String("line", line), zap.Error(err))
	}
	return err
}

func (c *Console) execute(line string) error {
	words, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	if len(words) == 0 {
		return nil
	}

	name, args := words[0], words[1:]
	h, ok := c.cmds[name]
	if !ok && len(words) > 1 {
		name, args = words[0]+" "+words[1], words[2:]
		h, ok = c.cmds[name]
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, strings.Join(words[:min(2, len(words))], " "))
	}
	if len(args) < h.args {
		return fmt.Errorf("%w: usage: %s", ErrMissingArgument, h.usage)
	}
	return h.run(c, args)
}

func (c *Console) objLoad(args []string) error {
	name, err := c.target.LoadObject(args[0])
	if err != nil {
		return err
	}
	c.print("loaded %s as %s", args[0], name)
	return nil
}

func (c *Console) objList([]string) error {
	objs := c.target.Objects()
	if len(objs) == 0 {
		c.print("no objects")
		return nil
	}
	for _, o := range objs {
		p := o.Transform.Position
		c.print("%s (%s) at %.2f %.2f %.2f", o.Name, o.Source, p.X(), p.Y(), p.Z())
	}
	return nil
}

func (c *Console) objRemove(args []string) error {
	if err := c.target.RemoveObject(args[0]); err != nil {
		return err
	}
	c.print("removed %s", args[0])
	return nil
}

func (c *Console) objMoveTo(args []string) error {
	obj := c.target.Object(args[0])
	if obj == nil {
		return fmt.Errorf("%w: %s", ErrNoObject, args[0])
	}
	v, err := parseVec3(args[1:4])
	if err != nil {
		return err
	}
	obj.Transform.Position = v
	c.print("%s moved to %.2f %.2f %.2f", obj.Name, v.X(), v.Y(), v.Z())
	return nil
}

func (c *Console) objRotate(args []string) error {
	obj := c.target.Object(args[0])
	if obj == nil {
		return fmt.Errorf("%w: %s", ErrNoObject, args[0])
	}
	v, err := parseVec3(args[1:4])
	if err != nil {
		return err
	}
	obj.Transform.SetRotationEuler(v.X(), v.Y(), v.Z())
	c.print("%s rotated to %.1f %.1f %.1f", obj.Name, v.X(), v.Y(), v.Z())
	return nil
}

type objectInfo struct {
	Name      string
	Source    string
	Mesh      string
	SubMeshes int
	Material  string
	Shader    string
	Texture   string
	Transform scene.Transform
	Weight    float32
	Color     mgl32.Vec3
}

func (c *Console) objInfo(args []string) error {
	obj := c.target.Object(args[0])
	if obj == nil {
		return fmt.Errorf("%w: %s", ErrNoObject, args[0])
	}
	info := objectInfo{
		Name:      obj.Name,
		Source:    obj.Source,
		Transform: obj.Transform,
		Weight:    obj.Weight,
		Color:     obj.Color,
	}
	if obj.Mesh != nil {
		info.Mesh = obj.Mesh.Name()
		info.SubMeshes = len(obj.Mesh.SubMeshes())
	}
	if obj.Material != nil {
		info.Material = obj.Material.Name()
		info.Shader = obj.Material.ShaderName()
		info.Texture = obj.Material.TextureName()
	}
	for _, line := range strings.Split(strings.TrimSpace(spewConfig.Sdump(info)), "\n") {
		c.print("%s", line)
	}
	return nil
}

func (c *Console) help([]string) error {
	usages := make([]string, 0, len(c.cmds))
	for _, h := range c.cmds {
		usages = append(usages, h.usage)
	}
	sort.Strings(usages)
	for _, u := range usages {
		c.print("%s", u)
	}
	return nil
}

func (c *Console) screenshot([]string) error {
	c.target.Screenshot()
	c.print("screenshot queued")
	return nil
}

func (c *Console) quit([]string) error {
	c.print("bye")
	c.target.Quit()
	return nil
}

func parseVec3(args []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return v, fmt.Errorf("%w: %q is not a number", ErrBadArgument, a)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// ReadLines reads newline-terminated commands from r on a separate
// goroutine. The channel is closed when r is exhausted.
func ReadLines(r io.Reader) <-chan string {
	lines := make(chan string, 8)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				lines <- line
			}
		}
	}()
	return lines
}
