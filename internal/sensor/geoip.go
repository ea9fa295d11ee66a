package sensor

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/oschwald/geoip2-golang"
)

type clientIPKey struct{}

// WithClientIP attaches the requesting client's address for the GeoIP sensor.
func WithClientIP(ctx context.Context, ip net.IP) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) net.IP {
	ip, _ := ctx.Value(clientIPKey{}).(net.IP)
	return ip
}

// cityLookup is the subset of *geoip2.Reader used here.
type cityLookup interface {
	City(ip net.IP) (*geoip2.City, error)
}

// GeoIP estimates position from the client IP with a MaxMind City database.
// It is coarse (city level) and is used when the client cannot report a
// device reading.
type GeoIP struct {
	db     cityLookup
	closer func() error
}

// OpenGeoIP opens a GeoLite2/GeoIP2 City database file.
func OpenGeoIP(path string) (*GeoIP, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &GeoIP{db: db, closer: db.Close}, nil
}

func (g *GeoIP) Close() error {
	if g == nil || g.closer == nil {
		return nil
	}
	return g.closer()
}

func (g *GeoIP) CurrentPosition(ctx context.Context, _ Options) (Reading, error) {
	if ctx.Err() != nil {
		return Reading{}, timeoutFailure(ctx)
	}
	ip := ClientIP(ctx)
	if ip == nil {
		return Reading{}, &Failure{Code: PositionUnavailable, Message: "client address unknown"}
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return Reading{}, &Failure{Code: PositionUnavailable, Message: "client address is not routable"}
	}

	rec, err := g.db.City(ip)
	if err != nil {
		return Reading{}, &Failure{Code: PositionUnavailable, Message: err.Error()}
	}
	loc := rec.Location
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return Reading{}, &Failure{Code: PositionUnavailable, Message: "no location for address"}
	}
	return Reading{
		Lat:       loc.Latitude,
		Lon:       loc.Longitude,
		AccuracyM: float64(loc.AccuracyRadius) * 1000,
		Timestamp: time.Now(),
	}, nil
}
