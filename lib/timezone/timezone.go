package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Bucharest")
	if err != nil {
		panic(err)
	}
}

// force the portal's timezone because billing periods roll over
// on Bucharest-local dates no matter where the process runs
func Now() time.Time {
	return time.Now().In(Location)
}
