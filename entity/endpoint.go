package entity

// Upstream endpoint names. Each endpoint returns one JSON array of records
// of one kind.
const (
	EndpointAgents    = "agents"
	EndpointWeapons   = "weapons"
	EndpointMaps      = "maps"
	EndpointGameModes = "gamemodes"
)

// Output table names. The agents and weapons endpoints each produce two
// tables (the parent records plus a one-to-many expansion).
const (
	TableAgents       = "agents"
	TableAbilities    = "abilities"
	TableWeapons      = "weapons"
	TableWeaponDamage = "weapon_damage"
	TableMaps         = "maps"
	TableGameModes    = "gamemodes"
)
