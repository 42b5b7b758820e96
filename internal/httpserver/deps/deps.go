package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
	redisstore "github.com/MrSnakeDoc/folio/internal/store/redis"
	"github.com/MrSnakeDoc/folio/internal/workspace"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on ops endpoints
	AllowedCIDRS []string // IPs allowed on ops endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins  []string // origins allowed to call the dashboard API
	CookieSecure bool     // mark the session cookie Secure

	LoginBurst        int // login attempts per IP in a burst
	LoginRefillPerMin int // login attempts regained per minute

	RedisClient *redis.Client          // Redis client connection (health checks)
	Pages       *redisstore.Store      // listing page cache (nil disables caching)
	API         *apiclient.Client      // unauthenticated portfolio API client
	Auth        *apiclient.Auth        // login against the portfolio API
	Workspaces  *workspace.Registry    // open dashboard sessions
	Dispatcher  *revalidate.Dispatcher // fan-out for explicit revalidation

	Icons             func() *domain.IconTable // current skill icon table
	IconsLastReload   func() time.Time         // zero when never reloaded
	IconReloadTrigger chan struct{}            // Channel to trigger manual icon reload (nil if no icon file)
}

// Now returns d.TimeNow() or time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
