package logger

// Standard field keys. Use them consistently so log lines can be queried.
const (
	KeyPartition  = "partition"
	KeyDirection  = "direction"
	KeyOffset     = "offset"
	KeyPageSize   = "page_size"
	KeyLoadID     = "load_id"
	KeyItems      = "items"
	KeyHasMore    = "has_more"
	KeyEndReached = "end_reached"
	KeyDuration   = "duration"
	KeyError      = "error"
	KeyThreshold  = "threshold"
	KeyStaleRows  = "stale_rows"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyAddr       = "addr"
	KeyPath       = "path"
	KeyBackend    = "backend"
	KeyInitAction = "init_action"
	KeySchemaVer  = "schema_version"
)

// Err is the conventional error attribute.
func Err(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
