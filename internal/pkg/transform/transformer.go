// Package transform maps raw endpoint records into flat tables.
//
// The mapping is a pure function of its input: same input records always
// yield the same rows in the same order. Missing, null or malformed fields
// never cause an error; every output column has a total default for every
// possible input shape (empty string, zero, or false).
package transform

import (
	"strings"

	"github.com/valsync/valsync/entity"
	"github.com/valsync/valsync/pkg/notify"
)

const (
	// Hard limit on description columns, in code points
	descriptionMaxLen = 500

	// Literal prefix stripped from weapon categories
	weaponCategoryPrefix = "EEquippableCategory::"

	// Role used for agents without a role object
	agentRoleUnknown = "Unknown"
)

// Transformer is stateless and immutable, invoked once per run with all
// extracted data.
type Transformer struct {
	notifier *notify.Notifier
}

func NewTransformer(notifier *notify.Notifier) *Transformer {
	return &Transformer{notifier: notifier}
}

// TransformAll transforms all extracted data into flat tables. A table (and
// any table derived from the same endpoint) is produced only if its endpoint
// key is present in the input map at all; a present endpoint with an empty
// record list yields a present-but-empty table.
func (t *Transformer) TransformAll(raw map[string][]entity.Record) map[string]*entity.Table {

	tables := make(map[string]*entity.Table)

	if records, ok := raw[entity.EndpointAgents]; ok {
		tables[entity.TableAgents] = t.TransformAgents(records)
		tables[entity.TableAbilities] = t.TransformAbilities(records)
	}

	if records, ok := raw[entity.EndpointWeapons]; ok {
		tables[entity.TableWeapons] = t.TransformWeapons(records)
		tables[entity.TableWeaponDamage] = t.TransformDamageRanges(records)
	}

	if records, ok := raw[entity.EndpointMaps]; ok {
		tables[entity.TableMaps] = t.TransformMaps(records)
	}

	if records, ok := raw[entity.EndpointGameModes]; ok {
		tables[entity.TableGameModes] = t.TransformGameModes(records)
	}

	for name, table := range tables {
		t.notifier.Notify(entity.NotifyLevelInfo, "Transformed %s: %d rows, %d columns", name, table.NumRows(), table.NumColumns())
	}

	return tables
}

// TransformAgents produces one row per playable agent. Non-playable records
// are filtered out.
func (t *Transformer) TransformAgents(records []entity.Record) *entity.Table {

	table := entity.NewTable(entity.TableAgents,
		entity.Column{Name: "uuid", Kind: entity.ColumnText},
		entity.Column{Name: "name", Kind: entity.ColumnText},
		entity.Column{Name: "role", Kind: entity.ColumnText},
		entity.Column{Name: "description", Kind: entity.ColumnText},
		entity.Column{Name: "icon_url", Kind: entity.ColumnText},
	)

	for _, rec := range records {
		if !rec.Bool("isPlayableCharacter", false) {
			continue
		}
		table.AddRow(
			rec.Str("uuid", ""),
			rec.Str("displayName", ""),
			rec.Str("role.displayName", agentRoleUnknown),
			entity.Truncate(rec.Str("description", ""), descriptionMaxLen),
			rec.Str("displayIcon", ""),
		)
	}
	return table
}

// TransformAbilities flattens the per-agent ability lists into one row per
// ability, carrying the denormalized agent name and role. Order is carried by
// table row order only.
func (t *Transformer) TransformAbilities(records []entity.Record) *entity.Table {

	table := entity.NewTable(entity.TableAbilities,
		entity.Column{Name: "agent_name", Kind: entity.ColumnText},
		entity.Column{Name: "agent_role", Kind: entity.ColumnText},
		entity.Column{Name: "slot", Kind: entity.ColumnText},
		entity.Column{Name: "ability_name", Kind: entity.ColumnText},
		entity.Column{Name: "description", Kind: entity.ColumnText},
	)

	for _, rec := range records {
		if !rec.Bool("isPlayableCharacter", false) {
			continue
		}
		name := rec.Str("displayName", "")
		role := rec.Str("role.displayName", agentRoleUnknown)

		for _, ability := range rec.Each("abilities") {
			table.AddRow(
				name,
				role,
				ability.Str("slot", ""),
				ability.Str("displayName", ""),
				entity.Truncate(ability.Str("description", ""), descriptionMaxLen),
			)
		}
	}
	return table
}

// TransformWeapons produces one row per weapon. All stat fields default
// independently when the stats object or the field itself is absent.
func (t *Transformer) TransformWeapons(records []entity.Record) *entity.Table {

	table := entity.NewTable(entity.TableWeapons,
		entity.Column{Name: "uuid", Kind: entity.ColumnText},
		entity.Column{Name: "name", Kind: entity.ColumnText},
		entity.Column{Name: "category", Kind: entity.ColumnText},
		entity.Column{Name: "cost", Kind: entity.ColumnInt},
		entity.Column{Name: "fire_rate", Kind: entity.ColumnReal},
		entity.Column{Name: "magazine_size", Kind: entity.ColumnInt},
		entity.Column{Name: "reload_time", Kind: entity.ColumnReal},
		entity.Column{Name: "equip_time", Kind: entity.ColumnReal},
		entity.Column{Name: "first_bullet_accuracy", Kind: entity.ColumnReal},
		entity.Column{Name: "wall_penetration", Kind: entity.ColumnText},
		entity.Column{Name: "icon_url", Kind: entity.ColumnText},
	)

	for _, rec := range records {
		table.AddRow(
			rec.Str("uuid", ""),
			rec.Str("displayName", ""),
			strings.TrimPrefix(rec.Str("category", ""), weaponCategoryPrefix),
			rec.Int("shopData.cost", 0),
			rec.Float("weaponStats.fireRate", 0),
			rec.Int("weaponStats.magazineSize", 0),
			rec.Float("weaponStats.reloadTimeSeconds", 0),
			rec.Float("weaponStats.equipTimeSeconds", 0),
			rec.Float("weaponStats.firstBulletAccuracy", 0),
			rec.Str("weaponStats.wallPenetration", ""),
			rec.Str("displayIcon", ""),
		)
	}
	return table
}

// TransformDamageRanges flattens the per-weapon damage bracket lists into one
// row per bracket, with a zero-based index within the weapon's range list.
func (t *Transformer) TransformDamageRanges(records []entity.Record) *entity.Table {

	table := entity.NewTable(entity.TableWeaponDamage,
		entity.Column{Name: "weapon_name", Kind: entity.ColumnText},
		entity.Column{Name: "range_index", Kind: entity.ColumnInt},
		entity.Column{Name: "range_start", Kind: entity.ColumnReal},
		entity.Column{Name: "range_end", Kind: entity.ColumnReal},
		entity.Column{Name: "head_damage", Kind: entity.ColumnReal},
		entity.Column{Name: "body_damage", Kind: entity.ColumnReal},
		entity.Column{Name: "leg_damage", Kind: entity.ColumnReal},
	)

	for _, rec := range records {
		name := rec.Str("displayName", "")

		for i, damageRange := range rec.Each("weaponStats.damageRanges") {
			table.AddRow(
				name,
				int64(i),
				damageRange.Float("rangeStartMeters", 0),
				damageRange.Float("rangeEndMeters", 0),
				damageRange.Float("headDamage", 0),
				damageRange.Float("bodyDamage", 0),
				damageRange.Float("legDamage", 0),
			)
		}
	}
	return table
}

// TransformMaps produces one row per map. num_callouts is derived (length of
// the callouts list, absent list counting as 0), not copied.
func (t *Transformer) TransformMaps(records []entity.Record) *entity.Table {

	table := entity.NewTable(entity.TableMaps,
		entity.Column{Name: "uuid", Kind: entity.ColumnText},
		entity.Column{Name: "name", Kind: entity.ColumnText},
		entity.Column{Name: "coordinates", Kind: entity.ColumnText},
		entity.Column{Name: "num_callouts", Kind: entity.ColumnInt},
		entity.Column{Name: "splash_url", Kind: entity.ColumnText},
	)

	for _, rec := range records {
		table.AddRow(
			rec.Str("uuid", ""),
			rec.Str("displayName", ""),
			rec.Str("coordinates", ""),
			int64(len(rec.Each("callouts"))),
			rec.Str("splash", ""),
		)
	}
	return table
}

// TransformGameModes produces one row per game mode.
func (t *Transformer) TransformGameModes(records []entity.Record) *entity.Table {

	table := entity.NewTable(entity.TableGameModes,
		entity.Column{Name: "uuid", Kind: entity.ColumnText},
		entity.Column{Name: "name", Kind: entity.ColumnText},
		entity.Column{Name: "duration", Kind: entity.ColumnText},
		entity.Column{Name: "allows_timeouts", Kind: entity.ColumnBool},
	)

	for _, rec := range records {
		table.AddRow(
			rec.Str("uuid", ""),
			rec.Str("displayName", ""),
			rec.Str("duration", ""),
			rec.Bool("allowsMatchTimeouts", false),
		)
	}
	return table
}
