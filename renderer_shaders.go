// renderer_shaders.go - GLSL sources for the 3-pass pipeline

package main

const rendererVertexShader = `#version 410 core
layout(location = 0) in vec2 inPos;
out vec2 uv;
void main() {
    uv = inPos * 0.5 + 0.5;
    gl_Position = vec4(inPos, 0.0, 1.0);
}
`

// rendererChannelFragShader implements Pass 1: curve warp, ratio warp,
// audio sample, the mandatory voltage-normalization formula, and hue/scheme
// coloring, for a single channel selected by uChannel.
const rendererChannelFragShader = `#version 410 core
in vec2 uv;
out vec4 fragColor;

uniform sampler2D uAudioTex;
uniform int uChannel;
uniform float uFrequency;
uniform float uIntensity;
uniform float uCurve;
uniform float uRatio;
uniform float uColorScheme;
uniform float uBaseHue;

const float PI = 3.14159265359;
const float COMPRESS = 3.0;

vec3 hsv2rgb(vec3 c) {
    vec3 p = abs(fract(c.xxx + vec3(1.0, 2.0/3.0, 1.0/3.0)) * 6.0 - 3.0);
    return c.z * mix(vec3(1.0), clamp(p - 1.0, 0.0, 1.0), c.y);
}

void main() {
    float xNormalized = uv.x;
    float yFromCenter = (uv.y - 0.5) * 2.0;

    float xSample = xNormalized;
    if (uCurve > 0.001) {
        xSample = fract(xNormalized + yFromCenter * sin(xNormalized * PI) * uCurve * 2.0);
    }

    // Shader-domain "ratio" warp: a visual coordinate warp, not pitch shift.
    xSample *= (uRatio / COMPRESS);

    float w = texture(uAudioTex, vec2(xSample, (float(uChannel) + 0.5) / 4.0)).r;

    // Mandatory voltage-normalization formula: abs(w) variants are incorrect.
    float n = clamp((w + 10.0) * 0.05 * uIntensity, 0.0, 1.0);

    float hue = fract(log2(uFrequency / 261.63) + uBaseHue);
    vec3 baseHsv = vec3(hue, 1.0, n);

    // Continuous morph across three triadic palettes: rotate hue by +/-120 deg
    // bands, weighted by uColorScheme (0..1).
    float schemeShift = mix(-1.0/3.0, 1.0/3.0, uColorScheme);
    vec3 hsv = vec3(fract(baseHsv.x + schemeShift), baseHsv.y, baseHsv.z);

    fragColor = vec4(hsv2rgb(hsv), n);
}
`

// rendererRotateFragShader implements Pass 2: rotate about center
// with scale compensation so no black borders appear at any angle.
const rendererRotateFragShader = `#version 410 core
in vec2 uv;
out vec4 fragColor;

uniform sampler2D uSource;
uniform float uAngle; // radians

void main() {
    float c = cos(uAngle);
    float s = sin(uAngle);
    float scale = max(abs(c) + abs(s), abs(s) + abs(c));

    vec2 centered = (uv - 0.5) / scale;
    vec2 rotated = vec2(
        centered.x * c - centered.y * s,
        centered.x * s + centered.y * c
    );
    vec2 srcUV = rotated + 0.5;

    if (srcUV.x < 0.0 || srcUV.x > 1.0 || srcUV.y < 0.0 || srcUV.y > 1.0) {
        fragColor = vec4(0.0);
        return;
    }
    fragColor = texture(uSource, srcUV);
}
`

// rendererBlendFragShader implements Pass 3: region gating, the
// continuous blend-mode morph across Add/Screen/Difference/ColorDodge, the
// optional 5th camera/SD layer, and the brightness floor.
const rendererBlendFragShader = `#version 410 core
in vec2 uv;
out vec4 fragColor;

uniform sampler2D uChannelTex[4];
uniform sampler2D uRegionMap;
uniform sampler2D uCameraTex;
uniform bool uEnabled[4];
uniform bool uUseRegionMap;
uniform bool uHasCamera;
uniform float uBlendMode;
uniform float uBrightness;
uniform float uCameraIntensity;

const float BRIGHTNESS_FLOOR = 0.25;

vec3 blendAdd(vec3 a, vec3 b) { return a + b; }
vec3 blendScreen(vec3 a, vec3 b) { return 1.0 - (1.0 - a) * (1.0 - b); }
vec3 blendDifference(vec3 a, vec3 b) { return abs(a - b); }
vec3 blendColorDodge(vec3 a, vec3 b) { return a / max(1.0 - b, 0.001); }

vec3 blendMorph(vec3 a, vec3 b, float t) {
    if (t < 0.33) {
        return mix(blendAdd(a, b), blendScreen(a, b), t / 0.33);
    } else if (t < 0.66) {
        return mix(blendScreen(a, b), blendDifference(a, b), (t - 0.33) / 0.33);
    }
    return mix(blendDifference(a, b), blendColorDodge(a, b), (t - 0.66) / 0.34);
}

void main() {
    int regionChannel = -1;
    if (uUseRegionMap) {
        regionChannel = int(round(texture(uRegionMap, uv).r * 255.0));
    }

    vec3 accum = vec3(0.0);
    for (int ch = 0; ch < 4; ch++) {
        if (!uEnabled[ch]) {
            continue;
        }
        if (uUseRegionMap && regionChannel != ch) {
            continue;
        }
        vec4 texel = texture(uChannelTex[ch], uv);
        accum = blendMorph(accum, texel.rgb, uBlendMode);
    }

    if (uUseRegionMap && uHasCamera) {
        vec3 cam = texture(uCameraTex, uv).rgb * uCameraIntensity;
        accum = blendMorph(accum, cam, uBlendMode);
    }

    vec3 outRGB = max(vec3(BRIGHTNESS_FLOOR), accum * uBrightness);
    fragColor = vec4(outRGB, 1.0);
}
`
