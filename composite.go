package pbr

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// TextureSet is one group of normalized role textures that are combined
// into an NMO and a BCR texture.
type TextureSet struct {
	BaseName string
	Textures [NumRoles]*Texture
}

// Transform is how an output channel is computed from its sources.
type Transform int

// Possible transforms.
const (
	// Direct copies the sample of the first source.
	Direct = Transform(iota)
	// Average takes the mean of both sources, rounded down.
	Average
)

func (t Transform) String() string {
	switch t {
	case Direct:
		return "direct"
	case Average:
		return "average"
	default:
		return "unknown"
	}
}

// Source names a channel of one role texture.
type Source struct {
	Role    Role
	Channel int
}

// Slot describes how one output channel is filled.
type Slot struct {
	Transform Transform
	Sources   [2]Source
}

// Copy returns a slot that copies channel ch of role.
func Copy(role Role, ch int) Slot {
	return Slot{
		Transform: Direct,
		Sources:   [2]Source{{Role: role, Channel: ch}},
	}
}

// Mean returns a slot that averages two source channels.
func Mean(a, b Source) Slot {
	return Slot{
		Transform: Average,
		Sources:   [2]Source{a, b},
	}
}

// Assignment is a channel mapping table for the two output textures.
type Assignment struct {
	Name string
	NMO  [NumChannels]Slot
	BCR  [NumChannels]Slot
}

// Baseline is the channel mapping used by the converter by default.
var Baseline = Assignment{
	Name: "baseline",
	NMO: [NumChannels]Slot{
		Copy(RoleSMDI, ChannelG),
		Copy(RoleNOHQ, ChannelG),
		Copy(RoleNOHQ, ChannelR),
		Copy(RoleAS, ChannelG),
	},
	BCR: [NumChannels]Slot{
		Copy(RoleCO, ChannelB),
		Copy(RoleCO, ChannelG),
		Copy(RoleCO, ChannelR),
		Copy(RoleSMDI, ChannelB),
	},
}

// Averaged is Baseline with the NMO alpha taken as the mean of the green
// and red channels of the ambient shadow map.
var Averaged = Assignment{
	Name: "averaged",
	NMO: [NumChannels]Slot{
		Baseline.NMO[0],
		Baseline.NMO[1],
		Baseline.NMO[2],
		Mean(Source{RoleAS, ChannelG}, Source{RoleAS, ChannelR}),
	},
	BCR: Baseline.BCR,
}

// Assignments lists the built-in mapping tables.
var Assignments = []Assignment{Baseline, Averaged}

// AssignmentByName returns the built-in table with the given name.
func AssignmentByName(name string) (Assignment, bool) {
	for _, a := range Assignments {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}

	return Assignment{}, false
}

// Validate checks that every slot of the table refers to a valid role and
// channel.
func (a Assignment) Validate() error {
	for _, slots := range [][NumChannels]Slot{a.NMO, a.BCR} {
		for ch, slot := range slots {
			n := 1
			switch slot.Transform {
			case Direct:
			case Average:
				n = 2
			default:
				return errors.Errorf("pbr: assignment %s: channel %d: unknown transform %d",
					a.Name, ch, slot.Transform)
			}

			for _, src := range slot.Sources[:n] {
				if !src.Role.valid() {
					return errors.Errorf("pbr: assignment %s: channel %d: invalid role %d",
						a.Name, ch, src.Role)
				}
				if src.Channel < 0 || src.Channel >= NumChannels {
					return errors.Errorf("pbr: assignment %s: channel %d: invalid source channel %d",
						a.Name, ch, src.Channel)
				}
			}
		}
	}

	return nil
}

// Composite builds the NMO and BCR textures of set according to table.
// Every texture of the set must have the same dimensions. Rows are
// processed in parallel; the result does not depend on the scheduling. A
// texture whose pixel buffer is shorter than its dimensions claim makes
// Composite return an error.
func Composite(set TextureSet, table Assignment) (nmo *Texture, bcr *Texture, err error) {
	if err := table.Validate(); err != nil {
		return nil, nil, err
	}

	ref := set.Textures[RoleNOHQ]
	for _, role := range Roles {
		tex := set.Textures[role]
		if tex == nil {
			return nil, nil, errors.Errorf("pbr: Composite: %s texture missing", role)
		}
		if tex.Width != ref.Width || tex.Height != ref.Height {
			return nil, nil, errors.Errorf("pbr: Composite: %s texture is %dx%d, expected %dx%d",
				role, tex.Width, tex.Height, ref.Width, ref.Height)
		}
	}

	nmo = NewTexture(ref.Width, ref.Height)
	bcr = NewTexture(ref.Width, ref.Height)

	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (ref.Height + workers - 1) / workers
	if rowsPerWorker < 1 {
		rowsPerWorker = 1
	}

	var g errgroup.Group
	for start := 0; start < ref.Height; start += rowsPerWorker {
		start, end := start, min(start+rowsPerWorker, ref.Height)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("pbr: Composite: rows %d-%d: %v", start, end, r)
				}
			}()

			for y := start; y < end; y++ {
				compositeRow(nmo, &set, &table.NMO, y)
				compositeRow(bcr, &set, &table.BCR, y)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return nmo, bcr, nil
}

func compositeRow(dst *Texture, set *TextureSet, slots *[NumChannels]Slot, y int) {
	row := dst.Pix[dst.PixOffset(0, y):dst.PixOffset(0, y+1)]

	for ch, slot := range slots {
		a := set.Textures[slot.Sources[0].Role].Channel(slot.Sources[0].Channel).row(y)

		switch slot.Transform {
		case Direct:
			for x := 0; x < dst.Width; x++ {
				row[x*NumChannels+ch] = a[x*NumChannels]
			}
		case Average:
			b := set.Textures[slot.Sources[1].Role].Channel(slot.Sources[1].Channel).row(y)
			for x := 0; x < dst.Width; x++ {
				row[x*NumChannels+ch] = uint8((uint16(a[x*NumChannels]) + uint16(b[x*NumChannels])) / 2)
			}
		}
	}
}
