package layout

// scoreFields are the leading fields shared by replay files and score
// database entries.
var scoreFields = []Field{
	{Name: "mode", Type: TypeUint8},
	{Name: "version", Type: TypeInt32},
	{Name: "beatmap_md5", Type: TypeString, Nullable: true},
	{Name: "player", Type: TypeString, Nullable: true},
	{Name: "replay_md5", Type: TypeString, Nullable: true},
	{Name: "count_300", Type: TypeUint16},
	{Name: "count_100", Type: TypeUint16},
	{Name: "count_50", Type: TypeUint16},
	{Name: "count_geki", Type: TypeUint16},
	{Name: "count_katu", Type: TypeUint16},
	{Name: "count_miss", Type: TypeUint16},
	{Name: "score", Type: TypeInt32},
	{Name: "max_combo", Type: TypeUint16},
	{Name: "perfect", Type: TypeBool},
	{Name: "mods", Type: TypeInt32},
}

func withFields(extra ...Field) []Field {
	out := make([]Field, 0, len(scoreFields)+len(extra))
	out = append(out, scoreFields...)
	return append(out, extra...)
}

// ReplayHeader is a replay file up to and including its compressed frame
// data.
var ReplayHeader = Layout{
	Name:        "osr-header",
	Description: "replay file header and frame data",
	Fields: withFields(
		Field{Name: "life_bar", Type: TypeString, Nullable: true},
		Field{Name: "timestamp", Type: TypeDateTime},
		Field{Name: "replay_data", Type: TypeBlob},
		Field{Name: "online_score_id", Type: TypeInt64},
	),
}

// ScoreEntry is one score in a score database.
var ScoreEntry = Layout{
	Name:        "score-entry",
	Description: "score database entry",
	Fields: withFields(
		Field{Name: "life_bar", Type: TypeString, Nullable: true},
		Field{Name: "timestamp", Type: TypeDateTime},
		Field{Name: "marker", Type: TypeInt32},
		Field{Name: "online_score_id", Type: TypeInt64},
	),
}

// Builtin returns the layouts every registry starts with.
func Builtin() []Layout {
	return []Layout{ReplayHeader, ScoreEntry}
}

// DefaultRegistry returns a registry holding the built-in layouts followed
// by extra. A later layout replaces an earlier one of the same name.
func DefaultRegistry(extra ...Layout) (*Registry, error) {
	return NewRegistry(append(Builtin(), extra...)...)
}
