// Package scene holds the objects that make up the rendered world.
package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Collection is an ordered set of uniquely named objects with O(1)
// lookup by name.
type Collection struct {
	objects []*Object
	index   map[string]int
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// UniqueName returns base if it is free, otherwise base_N with the
// smallest N >= 1 that is free.
func (c *Collection) UniqueName(base string) string {
	if _, taken := c.index[base]; !taken {
		return base
	}
	for n := 1; ; n++ {
		name := base + "_" + strconv.Itoa(n)
		if _, taken := c.index[name]; !taken {
			return name
		}
	}
}

// Add appends obj, renaming it if its name is already taken. It returns
// the final name.
func (c *Collection) Add(obj *Object) string {
	if obj.Name == "" {
		obj.Name = "object"
	}
	obj.Name = c.UniqueName(obj.Name)
	c.index[obj.Name] = len(c.objects)
	c.objects = append(c.objects, obj)
	return obj.Name
}

// Remove deletes the named object and returns it, or nil if absent.
// The remaining objects keep their relative order.
func (c *Collection) Remove(name string) *Object {
	slot, ok := c.index[name]
	if !ok {
		return nil
	}
	obj := c.objects[slot]
	copy(c.objects[slot:], c.objects[slot+1:])
	c.objects[len(c.objects)-1] = nil
	c.objects = c.objects[:len(c.objects)-1]

	delete(c.index, name)
	for i := slot; i < len(c.objects); i++ {
		c.index[c.objects[i].Name] = i
	}
	return obj
}

// Get returns the named object, or nil.
func (c *Collection) Get(name string) *Object {
	if slot, ok := c.index[name]; ok {
		return c.objects[slot]
	}
	return nil
}

// Objects returns the objects in insertion order. The slice must not be
// modified.
func (c *Collection) Objects() []*Object {
	return c.objects
}

// Names returns object names in insertion order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.objects))
	for i, o := range c.objects {
		names[i] = o.Name
	}
	return names
}

// Len returns the number of objects.
func (c *Collection) Len() int {
	return len(c.objects)
}

// Clear removes every object and returns them.
func (c *Collection) Clear() []*Object {
	out := c.objects
	c.objects = nil
	clear(c.index)
	return out
}

func (c *Collection) String() string {
	return fmt.Sprintf("scene[%s]", strings.Join(c.Names(), ", "))
}
