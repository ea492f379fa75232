package model

// Room is a classroom the authenticated student belongs to
type Room struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

// Targets derives the deduplicated set of publication-target strings used
// to scope task listing. A room contributes up to two distinct targets:
// its id and its name.
func Targets(rooms []Room) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, room := range rooms {
		for _, t := range []string{room.ID.String(), room.Name} {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			targets = append(targets, t)
		}
	}
	return targets
}
