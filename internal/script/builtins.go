package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// preprocessSource rewrites source for zygomys: ; comments become //,
// :keyword becomes the string "__kw_keyword" and kebab-case identifiers
// become snake_case. String literals are left alone.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		}
		if b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// sexpVec3 carries a vector between builtins
type sexpVec3 struct {
	vec geometry.Vector3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i++
			} else {
				result.kw[name] = zygo.SexpNull
			}
			continue
		}
		result.positional = append(result.positional, args[i])
	}
	return result
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (geometry.Vector3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geometry.Vector3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toVectors(name string, args []zygo.Sexp, n int) ([]geometry.Vector3, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d vectors, got %d", name, n, len(args))
	}
	out := make([]geometry.Vector3, n)
	for i, a := range args {
		v, err := toVec3(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// builtin is a command run with exclusive access to the session
type builtin func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error)

// command registers fn under name, running it through the guard
func (e *Engine) command(env *zygo.Zlisp, name string, fn builtin) {
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		var out zygo.Sexp = zygo.SexpNull
		err := e.guard.Do(func(c *session.Controller) error {
			res, err := fn(c, args)
			if err != nil {
				return err
			}
			if res != nil {
				out = res
			}
			return nil
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", strings.ReplaceAll(name, "_", "-"), err)
		}
		return out, nil
	})
}

// noArgs adapts a controller method without arguments
func noArgs(fn func(c *session.Controller) error) builtin {
	return func(c *session.Controller, _ []zygo.Sexp) (zygo.Sexp, error) {
		return nil, fn(c)
	}
}

// canonical applies direction. The offset is the first positional
// argument or :offset, else the session offset.
func canonical(direction workplane.Direction) builtin {
	return func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		offset := c.Offset()
		v, ok := pa.kw["offset"]
		if !ok && len(pa.positional) > 0 {
			v, ok = pa.positional[0], true
		}
		if ok {
			o, err := toFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("offset: %w", err)
			}
			offset = o
		}
		return nil, c.OnCanonicalButton(direction, offset)
	}
}

// register installs the working plane commands
func (e *Engine) register(env *zygo.Zlisp) {
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: geometry.NewVector3(xyz[0], xyz[1], xyz[2])}, nil
	})

	e.command(env, "activate", noArgs((*session.Controller).Activate))
	for _, d := range workplane.Directions() {
		e.command(env, strings.ToLower(d.String()), canonical(d))
	}
	e.command(env, "previous", noArgs((*session.Controller).OnPrevious))
	e.command(env, "cancel", noArgs((*session.Controller).Cancel))
	e.command(env, "align_view", noArgs((*session.Controller).OnAlignToView))
	e.command(env, "auto", noArgs((*session.Controller).OnAuto))
	e.command(env, "move", noArgs((*session.Controller).OnMove))
	e.command(env, "center", noArgs((*session.Controller).OnCenter))

	// (offset 5) or (offset "2 cm")
	e.command(env, "offset", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("requires one argument, got %d", len(args))
		}
		if s, err := toString(args[0]); err == nil {
			return nil, c.SetOffsetText(s)
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return nil, err
		}
		c.SetOffset(f)
		return nil, nil
	})

	// (points (vec3 ..) (vec3 ..) (vec3 ..))
	e.command(env, "points", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toVectors("points", args, 3)
		if err != nil {
			return nil, err
		}
		return nil, c.OnSelectionMade(workplane.ThreePoints{P0: p[0], P1: p[1], P2: p[2]})
	})

	// (face normal point)
	e.command(env, "face", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toVectors("face", args, 2)
		if err != nil {
			return nil, err
		}
		return nil, c.OnSelectionMade(workplane.Face{Normal: v[0], Point: v[1]})
	})

	// (select "Box" "Vertex1" ...)
	e.command(env, "select", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("requires an object name")
		}
		names := make([]string, len(args))
		for i, a := range args {
			s, err := toString(a)
			if err != nil {
				return nil, err
			}
			names[i] = s
		}
		return nil, e.doc.Select(names[0], names[1:]...)
	})

	e.command(env, "clear_selection", func(c *session.Controller, _ []zygo.Sexp) (zygo.Sexp, error) {
		e.doc.ClearSelection()
		return nil, nil
	})

	// (click) delivers a pointer event and lets the queue run once
	e.command(env, "click", func(c *session.Controller, _ []zygo.Sexp) (zygo.Sexp, error) {
		c.OnPointerDown()
		c.Queue().Drain()
		return nil, nil
	})

	e.command(env, "status", func(c *session.Controller, _ []zygo.Sexp) (zygo.Sexp, error) {
		text := c.Status().Text
		fmt.Fprintln(e.out, text)
		return &zygo.SexpStr{S: text}, nil
	})

	// (plane) returns (origin normal u v)
	e.command(env, "plane", func(c *session.Controller, _ []zygo.Sexp) (zygo.Sexp, error) {
		p := c.Plane()
		fmt.Fprintf(e.out, "origin %s normal %s\n", vecString(p.Origin), vecString(p.Normal))
		return zygo.MakeList([]zygo.Sexp{
			&sexpVec3{vec: p.Origin},
			&sexpVec3{vec: p.Normal},
			&sexpVec3{vec: p.U},
			&sexpVec3{vec: p.V},
		}), nil
	})

	// (camera position direction)
	e.command(env, "camera", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toVectors("camera", args, 2)
		if err != nil {
			return nil, err
		}
		u, up, n, err := workplane.Basis(v[1].Neg())
		if err != nil {
			return nil, fmt.Errorf("direction: %w", err)
		}
		pose := e.doc.Camera()
		pose.Position = v[0]
		pose.Orientation = geometry.QuaternionFromBasis(u, up, n)
		e.doc.SetCamera(pose)
		return nil, nil
	})

	// (center-on-view true)
	e.command(env, "center_on_view", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("requires one argument, got %d", len(args))
		}
		b, err := toBool(args[0])
		if err != nil {
			return nil, err
		}
		c.SetCenterPlaneOnView(b)
		return nil, nil
	})

	// (grid :spacing "5 mm" :main-line 10 :snap 8)
	e.command(env, "grid", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if v, ok := pa.kw["spacing"]; ok {
			s, err := toString(v)
			if err != nil {
				f, ferr := toFloat64(v)
				if ferr != nil {
					return nil, fmt.Errorf("spacing: %w", ferr)
				}
				s = fmt.Sprint(f)
			}
			if err := c.SetGridSpacingText(s); err != nil {
				return nil, err
			}
		}
		if v, ok := pa.kw["main-line"]; ok {
			n, err := toInt(v)
			if err != nil {
				return nil, fmt.Errorf("main-line: %w", err)
			}
			c.SetGridMainLine(n)
		}
		if v, ok := pa.kw["snap"]; ok {
			n, err := toInt(v)
			if err != nil {
				return nil, fmt.Errorf("snap: %w", err)
			}
			c.SetSnapRadius(n)
		}
		return nil, nil
	})

	// (save-proxy "Level 1") stores the working plane and the view
	e.command(env, "save_proxy", func(c *session.Controller, args []zygo.Sexp) (zygo.Sexp, error) {
		label := ""
		if len(args) > 0 {
			s, err := toString(args[0])
			if err != nil {
				return nil, err
			}
			label = s
		}
		obj, err := e.doc.AddProxy(label, c.Plane())
		if err != nil {
			return nil, err
		}
		return &zygo.SexpStr{S: obj.Name}, nil
	})
}

func vecString(v geometry.Vector3) string {
	return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z)
}
