package config

import (
	"time"
)

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[tokenswap]"`
}

// Catalog configures where asset prices come from.
type Catalog struct {
	// Source is "static" for the built-in table or "http" for the price feed.
	Source       string        `envconfig:"SOURCE" default:"static"`
	URL          string        `envconfig:"URL" default:"https://interview.switcheo.com/prices.json"`
	IconTemplate string        `envconfig:"ICON_TEMPLATE" default:"https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens/{symbol}.svg"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	MaxRetries   uint          `envconfig:"MAX_RETRIES" default:"3"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"15s"`
	// CacheDriver is "none", "memory" or "redis".
	CacheDriver string        `envconfig:"CACHE_DRIVER" default:"memory"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"1m"`
	CachePrefix string        `envconfig:"CACHE_PREFIX" default:"tokenswap:quotes:"`
}

// Wallet holds the user's balances and the chain each currency lives on.
type Wallet struct {
	Balances map[string]string `envconfig:"BALANCES" default:"ETH:2.5,USDC:1000,USDT:1000,BNB:12,SOL:40,BTC:0.15"`
	Chains   map[string]string `envconfig:"CHAINS" default:"ETH:Ethereum,USDC:Ethereum,USDT:Arbitrum,BNB:Neo,SOL:Solana,BTC:Zilliqa,OSMO:Osmosis"`
}

// Execution configures the conversion execution service. Without a URL a
// local stub settles every request.
type Execution struct {
	URL         string        `envconfig:"URL"`
	APIKey      string        `envconfig:"API_KEY"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"30s"`
	StubLatency time.Duration `envconfig:"STUB_LATENCY" default:"1500ms"`
}

type Engine struct {
	CallTimeout      time.Duration `envconfig:"CALL_TIMEOUT" default:"30s"`
	SwapConfirmDelay time.Duration `envconfig:"SWAP_CONFIRM_DELAY" default:"300ms"`
	DefaultSource    string        `envconfig:"DEFAULT_SOURCE" default:"ETH"`
	DefaultTarget    string        `envconfig:"DEFAULT_TARGET" default:"USDC"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:""`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type EventBus struct {
	// Driver is "memory" or "redis".
	Driver string `envconfig:"DRIVER" default:"memory"`
	Stream string `envconfig:"STREAM" default:"tokenswap:events"`
	Group  string `envconfig:"GROUP" default:"tokenswap"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	Catalog   *Catalog   `envconfig:"CATALOG"`
	Wallet    *Wallet    `envconfig:"WALLET"`
	Execution *Execution `envconfig:"EXECUTION"`
	Engine    *Engine    `envconfig:"ENGINE"`
	Redis     *Redis     `envconfig:"REDIS"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}
