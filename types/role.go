package types

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
	RoleTool      Role = "tool"
)

// DefaultRole is used when a message is built without an explicit role.
const DefaultRole = RoleUser

var roleValues = []Role{RoleSystem, RoleUser, RoleAssistant, RoleFunction, RoleTool}

// Valid reports whether v is a known Role.
func (v Role) Valid() bool { return member(roleValues)(v) }

// String returns the wire string.
func (v Role) String() string { return string(v) }

// UnmarshalJSON rejects values outside the closed set.
func (v *Role) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, v, "Role", Role.Valid)
}

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) { return parseEnum(s, "Role", Role.Valid) }

