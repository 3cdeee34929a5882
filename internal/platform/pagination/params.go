package pagination

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Params embeds into huma input structs for pagination.
type Params struct {
	Cursor string `query:"cursor" doc:"Opaque pagination cursor from a previous Link header"`
	Limit  int    `query:"limit"  doc:"Maximum items per page"                               default:"100" minimum:"1" maximum:"500"`
}

// EffectiveLimit returns Limit, or DefaultLimit when unset.
func (p Params) EffectiveLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	return min(p.Limit, MaxLimit)
}
