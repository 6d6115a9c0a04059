package room

import "time"

const (
	TickRate  = 60
	FixedStep = time.Second / TickRate

	MaxSeats = 150

	MapWidth  = 600
	MapHeight = 600

	SpawnX = 560
	SpawnY = 300

	MessageCapacity    = 100
	ReactionCapacity   = 100
	TradeCapacity      = 100
	WorldEventCapacity = 10

	// PlaceableRange is the furthest an owner may wander before their placeable is removed.
	PlaceableRange    = 50.0
	PlaceableLifetime = 5 * time.Minute

	DefaultInputQueueCapacity = 256
	DefaultProtectedZone      = "corn_maze"
)
