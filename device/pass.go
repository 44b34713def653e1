package device

// Program identifies one of the fixed shader programs.
type Program int

const (
	ProgramClear Program = iota
	ProgramDisplay
	ProgramSplat
	ProgramAdvection
	ProgramDivergence
	ProgramCurl
	ProgramVorticity
	ProgramPressure
	ProgramGradientSubtract

	NumPrograms
)

var programNames = [NumPrograms]string{
	"clear",
	"display",
	"splat",
	"advection",
	"divergence",
	"curl",
	"vorticity",
	"pressure",
	"gradientSubtract",
}

func (p Program) String() string {
	if p < 0 || p >= NumPrograms {
		return "unknown"
	}
	return programNames[p]
}

// Pass is the input of one draw: the program to run plus its uniforms
// and source textures. The set of implementations is closed.
type Pass interface {
	Program() Program
}

// Clear writes Value * Source. Used to apply pressure dissipation.
type Clear struct {
	Source Target
	Value  float32
}

// Display remaps a dye sample for presentation.
type Display struct {
	Source Target
}

// Splat adds a noise-shaped blob of Color around Point onto Base.
type Splat struct {
	Base         Target
	AspectRatio  float32
	Color        [3]float32
	Point        [2]float32
	Radius       float32
	Angle        float32
	Irregularity float32
	Time         float32
}

// Advection transports Source along Velocity by a semi-Lagrangian
// backtrace of DT.
type Advection struct {
	Velocity    Target
	Source      Target
	TexelSize   [2]float32
	DT          float32
	Dissipation float32
}

// Divergence computes the central-difference divergence of Velocity.
type Divergence struct {
	Velocity  Target
	TexelSize [2]float32
}

// Curl computes the scalar vorticity of Velocity.
type Curl struct {
	Velocity  Target
	TexelSize [2]float32
}

// Vorticity adds the confinement force derived from Curl to Velocity.
type Vorticity struct {
	Velocity  Target
	Curl      Target
	TexelSize [2]float32
	Strength  float32
	DT        float32
}

// Pressure runs one Jacobi iteration of the pressure Poisson equation.
type Pressure struct {
	Pressure   Target
	Divergence Target
	TexelSize  [2]float32
}

// GradientSubtract removes the pressure gradient from Velocity.
type GradientSubtract struct {
	Pressure  Target
	Velocity  Target
	TexelSize [2]float32
}

func (Clear) Program() Program            { return ProgramClear }
func (Display) Program() Program          { return ProgramDisplay }
func (Splat) Program() Program            { return ProgramSplat }
func (Advection) Program() Program        { return ProgramAdvection }
func (Divergence) Program() Program       { return ProgramDivergence }
func (Curl) Program() Program             { return ProgramCurl }
func (Vorticity) Program() Program        { return ProgramVorticity }
func (Pressure) Program() Program         { return ProgramPressure }
func (GradientSubtract) Program() Program { return ProgramGradientSubtract }
