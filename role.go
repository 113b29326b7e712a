package pbr

// Role is the kind of legacy texture map an input file holds.
type Role int

// Texture roles, identified by the suffix of the file name.
const (
	RoleNOHQ = Role(iota)
	RoleSMDI
	RoleAS
	RoleCO

	NumRoles
)

// Roles lists every role in set order.
var Roles = [NumRoles]Role{RoleNOHQ, RoleSMDI, RoleAS, RoleCO}

func (r Role) String() string {
	switch r {
	case RoleNOHQ:
		return "nohq"
	case RoleSMDI:
		return "smdi"
	case RoleAS:
		return "as"
	case RoleCO:
		return "co"
	default:
		return "unknown"
	}
}

// Suffix returns the file name marker of the role, such as "_nohq".
func (r Role) Suffix() string {
	return "_" + r.String()
}

func (r Role) valid() bool {
	return r >= 0 && r < NumRoles
}
