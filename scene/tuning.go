package scene

// Velocities are in world units per second.
const (
	AirFriction          = 0.99
	HeldDamping          = 0.3
	MaxVelocity          = 500.0
	SoftVelocityCut      = 0.9
	HardVelocityFactor   = 1.5 // hard tier starts at MaxVelocity*HardVelocityFactor
	HardVelocityCut      = 0.5
	MaxAngularVelocity   = 15.0
	SoftAngularCut       = 0.8
	HeldAngularLimit     = 50.0
	HeldAngularReset     = 30.0
	VelocitySnap         = 0.25
	AngularVelocitySnap  = 0.001
	SleepFrames          = 200
	SleepVelocity        = 0.3
	SleepAngularVelocity = 0.01

	DragScale    = 1 / 0.3 * 2
	ReleaseScale = 1 / 0.3 * 4
	MaxDrag      = 50.0 // world units
	PointerInset = 5.0  // pixels

	WallWidth = 50.0 // world units
)
