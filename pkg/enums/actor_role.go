package enums

// ActorRole identifies the kind of operator acting on remittance orders.
type ActorRole string

const (
	ActorRoleAgent      ActorRole = "agent"
	ActorRoleSupervisor ActorRole = "supervisor"
	ActorRoleAdmin      ActorRole = "admin"
	ActorRoleSystem     ActorRole = "system"
)

func (r ActorRole) String() string { return string(r) }

func (r ActorRole) IsValid() bool {
	switch r {
	case ActorRoleAgent, ActorRoleSupervisor, ActorRoleAdmin, ActorRoleSystem:
		return true
	}
	return false
}
