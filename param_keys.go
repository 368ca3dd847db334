// param_keys.go - ParameterStore key space, ranges and defaults

package main

// ParamKey identifies a single scalar parameter inside the ParameterStore.
// Keys are plain strings (rather than a closed enum) because the MIDI
// mapping file and the preset JSON file both address parameters by
// name, and a string key round-trips through both without a translation
// table.
type ParamKey string

// Contour scanner parameters.
const (
	ParamScanTime        ParamKey = "contour.scan_time"         // seconds, [0.1, 300]
	ParamSceneThreshold  ParamKey = "contour.scene_threshold"   // [0.01, 0.10]
	ParamAnchorX         ParamKey = "contour.anchor_x"          // [0, 1]
	ParamAnchorY         ParamKey = "contour.anchor_y"          // [0, 1]
	ParamMinLength       ParamKey = "contour.min_length"        // pixels, >= 0
	ParamRetryFrames     ParamKey = "contour.retry_frames"      // integer count, >= 1
	ParamRange           ParamKey = "contour.range"             // percent, [1, 120]
	ParamEnv1Decay       ParamKey = "contour.env1_decay"        // seconds, [0.01, 5.0]
	ParamEnv2Decay       ParamKey = "contour.env2_decay"        // seconds, [0.01, 5.0]
	ParamEnv3Decay       ParamKey = "contour.env3_decay"        // seconds, [0.01, 5.0]
	ParamEnv1Muted       ParamKey = "contour.env1_muted"        // 0 or 1
	ParamEnv2Muted       ParamKey = "contour.env2_muted"        // 0 or 1
	ParamEnv3Muted       ParamKey = "contour.env3_muted"        // 0 or 1
	ParamSeq1Muted       ParamKey = "contour.seq1_muted"        // 0 or 1
	ParamSeq2Muted       ParamKey = "contour.seq2_muted"        // 0 or 1
	ParamMaxCameraRetry  ParamKey = "contour.max_camera_retry"  // consecutive failed reads, >= 1
)

// Alien4 engine parameters.
const (
	ParamRecording    ParamKey = "alien4.recording"           // 0 or 1
	ParamMinSliceTime ParamKey = "alien4.min_slice_time_knob" // knob [0,1]
	ParamScan         ParamKey = "alien4.scan"                // [0,1]
	ParamPoly         ParamKey = "alien4.poly"                // integer [1,8]
	ParamGlobalSpeed  ParamKey = "alien4.speed"                // [-8,8]
	ParamMixAmount    ParamKey = "alien4.mix_amount"           // [0,1] dry/wet loop vs input

	ParamEQLowGainDB  ParamKey = "alien4.eq.low_gain_db"  // [-20, 0]
	ParamEQMidGainDB  ParamKey = "alien4.eq.mid_gain_db"  // [-20, 0]
	ParamEQHighGainDB ParamKey = "alien4.eq.high_gain_db" // [-20, 0]

	ParamChaosRate           ParamKey = "alien4.chaos.rate"            // [0,1] maps to dt scale
	ParamChaosStepped        ParamKey = "alien4.chaos.stepped"         // 0 or 1
	ParamChaosStepPeriodMS   ParamKey = "alien4.chaos.step_period_ms"  // >= 1

	ParamDelayTimeL          ParamKey = "alien4.delay.time_l"          // seconds [0.001, 2.0]
	ParamDelayTimeR          ParamKey = "alien4.delay.time_r"          // seconds [0.001, 2.0]
	ParamDelayFeedback       ParamKey = "alien4.delay.feedback"        // [0, 0.95]
	ParamDelayChaosEnabled   ParamKey = "alien4.delay.chaos_enabled"   // 0 or 1
	ParamDelayChaosAmount    ParamKey = "alien4.delay.chaos_amount"    // [0,1]

	ParamGrainEnabled  ParamKey = "alien4.grain.enabled"       // 0 or 1
	ParamGrainSizeMS   ParamKey = "alien4.grain.size_ms"       // [1, 100]
	ParamGrainDensity  ParamKey = "alien4.grain.density_hz"    // [1, 51]
	ParamGrainPosition ParamKey = "alien4.grain.position"      // [0, 1]

	ParamReverbMix           ParamKey = "alien4.reverb.mix"            // [0,1]
	ParamReverbDecay         ParamKey = "alien4.reverb.decay"          // [0,1]
	ParamReverbRoomSize      ParamKey = "alien4.reverb.room_size"      // [0,1]
	ParamReverbDamping       ParamKey = "alien4.reverb.damping"        // [0,1]
	ParamReverbChaosEnabled  ParamKey = "alien4.reverb.chaos_enabled"  // 0 or 1
	ParamReverbChaosAmount   ParamKey = "alien4.reverb.chaos_amount"   // [0,1]
)

// Renderer parameters. Per-channel params are indexed 0..3.
const (
	ParamBlendMode       ParamKey = "render.blend_mode"       // [0,1] continuous morph
	ParamColorScheme     ParamKey = "render.color_scheme"     // [0,1] continuous morph
	ParamBrightness      ParamKey = "render.brightness"       // [0,4], 1 = unity
	ParamBaseHue         ParamKey = "render.base_hue"         // [0,1]
	ParamCameraIntensity ParamKey = "render.camera_intensity" // [0,1]
	ParamUseRegionMap    ParamKey = "render.use_region_map"   // 0 or 1
)

func paramChannelFrequency(ch int) ParamKey { return ParamKey(paramChanName("frequency", ch)) }
func paramChannelIntensity(ch int) ParamKey { return ParamKey(paramChanName("intensity", ch)) }
func paramChannelCurve(ch int) ParamKey     { return ParamKey(paramChanName("curve", ch)) }
func paramChannelAngle(ch int) ParamKey     { return ParamKey(paramChanName("angle", ch)) }
func paramChannelEnabled(ch int) ParamKey   { return ParamKey(paramChanName("enabled", ch)) }
func paramChannelRatio(ch int) ParamKey     { return ParamKey(paramChanName("ratio", ch)) }

func paramChanName(field string, ch int) string {
	const digits = "0123456789"
	b := []byte("render.channel#.")
	b[14] = digits[ch]
	return string(b) + field
}

// paramRange describes the clamp bounds applied at the ParameterStore write
// boundary: the store clamps and continues, it never panics. Boolean keys
// are {0, 1} with isBool set, and Set coerces them to exactly 0 or 1.
type paramRange struct {
	min, max float32
	isBool   bool
}

var paramRanges = map[ParamKey]paramRange{
	ParamScanTime:       {0.1, 300, false},
	ParamSceneThreshold: {0.01, 0.10, false},
	ParamAnchorX:        {0, 1, false},
	ParamAnchorY:        {0, 1, false},
	ParamMinLength:      {0, 100000, false},
	ParamRetryFrames:    {1, 3600, false},
	ParamRange:          {1, 120, false},
	ParamEnv1Decay:      {0.01, 5.0, false},
	ParamEnv2Decay:      {0.01, 5.0, false},
	ParamEnv3Decay:      {0.01, 5.0, false},
	ParamEnv1Muted:      {0, 1, true},
	ParamEnv2Muted:      {0, 1, true},
	ParamEnv3Muted:      {0, 1, true},
	ParamSeq1Muted:      {0, 1, true},
	ParamSeq2Muted:      {0, 1, true},
	ParamMaxCameraRetry: {1, 3600, false},

	ParamRecording:    {0, 1, true},
	ParamMinSliceTime: {0, 1, false},
	ParamScan:         {0, 1, false},
	ParamPoly:         {1, 8, false},
	ParamGlobalSpeed:  {-8, 8, false},
	ParamMixAmount:    {0, 1, false},

	ParamEQLowGainDB:  {-20, 0, false},
	ParamEQMidGainDB:  {-20, 0, false},
	ParamEQHighGainDB: {-20, 0, false},

	ParamChaosRate:         {0, 1, false},
	ParamChaosStepped:      {0, 1, true},
	ParamChaosStepPeriodMS: {1, 2000, false},

	ParamDelayTimeL:        {0.001, 2.0, false},
	ParamDelayTimeR:        {0.001, 2.0, false},
	ParamDelayFeedback:     {0, 0.95, false},
	ParamDelayChaosEnabled: {0, 1, true},
	ParamDelayChaosAmount:  {0, 1, false},

	ParamGrainEnabled:  {0, 1, true},
	ParamGrainSizeMS:   {1, 100, false},
	ParamGrainDensity:  {1, 51, false},
	ParamGrainPosition: {0, 1, false},

	ParamReverbMix:          {0, 1, false},
	ParamReverbDecay:        {0, 1, false},
	ParamReverbRoomSize:     {0, 1, false},
	ParamReverbDamping:      {0, 1, false},
	ParamReverbChaosEnabled: {0, 1, true},
	ParamReverbChaosAmount:  {0, 1, false},

	ParamBlendMode:       {0, 1, false},
	ParamColorScheme:     {0, 1, false},
	ParamBrightness:      {0, 4, false},
	ParamBaseHue:         {0, 1, false},
	ParamCameraIntensity: {0, 1, false},
	ParamUseRegionMap:    {0, 1, true},
}

func init() {
	for ch := 0; ch < 4; ch++ {
		paramRanges[paramChannelFrequency(ch)] = paramRange{20, 20000, false}
		paramRanges[paramChannelIntensity(ch)] = paramRange{0, 1, false}
		paramRanges[paramChannelCurve(ch)] = paramRange{0, 1, false}
		paramRanges[paramChannelAngle(ch)] = paramRange{0, 1, false} // fraction of 2*pi
		paramRanges[paramChannelEnabled(ch)] = paramRange{0, 1, true}
		paramRanges[paramChannelRatio(ch)] = paramRange{0.25, 4.0, false}
	}
}

// defaultParams returns a fresh default parameter set: every engine
// component can assume these are present in a brand-new ParameterStore
// (Get falls back to 0 for unknown keys regardless, but a default snapshot
// avoids an initial frame of degenerate zero-valued knobs).
func defaultParams() map[ParamKey]float32 {
	m := map[ParamKey]float32{
		ParamScanTime:       5.0,
		ParamSceneThreshold: 0.04,
		ParamAnchorX:        0.5,
		ParamAnchorY:        0.5,
		ParamMinLength:      40,
		ParamRetryFrames:    10,
		ParamRange:          50,
		ParamEnv1Decay:      0.3,
		ParamEnv2Decay:      0.3,
		ParamEnv3Decay:      0.3,
		ParamMaxCameraRetry: 30,

		ParamMinSliceTime: 0.3,
		ParamScan:         0,
		ParamPoly:         4,
		ParamGlobalSpeed:  1,
		ParamMixAmount:    0.5,

		ParamChaosRate:         0.5,
		ParamChaosStepPeriodMS: 50,

		ParamDelayTimeL:    0.3,
		ParamDelayTimeR:    0.3,
		ParamDelayFeedback: 0.3,

		ParamGrainEnabled:  0,
		ParamGrainSizeMS:   30,
		ParamGrainDensity:  10,
		ParamGrainPosition: 0.5,

		ParamReverbMix:      0.25,
		ParamReverbDecay:    0.5,
		ParamReverbRoomSize: 0.5,
		ParamReverbDamping:  0.5,

		ParamBlendMode:       0,
		ParamColorScheme:     0,
		ParamBrightness:      1,
		ParamBaseHue:         0,
		ParamCameraIntensity: 0.5,
	}
	for ch := 0; ch < 4; ch++ {
		m[paramChannelFrequency(ch)] = 261.63 * float32(ch+1)
		m[paramChannelIntensity(ch)] = 1.0
		m[paramChannelEnabled(ch)] = 1
		m[paramChannelRatio(ch)] = 1.0
	}
	return m
}
