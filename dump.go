package tidy

import "github.com/davecgh/go-spew/spew"

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump returns a detailed, type-annotated rendering of the plain form of
// c, for inspecting a Container while debugging
func (c *Container) Dump() string {
	return dumpConfig.Sdump(c.ToPlain())
}
