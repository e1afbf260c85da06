package nullgpu

import (
	"regexp"
	"strconv"
	"strings"

	"solo-engine/gpu"
)

var (
	lineComment   = regexp.MustCompile(`//[^\n]*`)
	blockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	uniformDecl   = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	inputDecl     = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?in\s+(\w+)\s+(\w+)\s*;`)
	outputDecl    = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?out\s+\w+\s+(\w+)\s*;`)
	mainSignature = regexp.MustCompile(`void\s+main\s*\(`)
)

var uniformTypes = map[string]gpu.UniformType{
	"float":       gpu.UniformFloat,
	"vec2":        gpu.UniformVec2,
	"vec3":        gpu.UniformVec3,
	"vec4":        gpu.UniformVec4,
	"mat3":        gpu.UniformMat3,
	"mat4":        gpu.UniformMat4,
	"int":         gpu.UniformInt,
	"bool":        gpu.UniformBool,
	"sampler2D":   gpu.UniformSampler2D,
	"samplerCube": gpu.UniformSamplerCube,
}

func stripComments(src string) string {
	return lineComment.ReplaceAllString(blockComment.ReplaceAllString(src, ""), "")
}

type declaration struct {
	typ      string
	name     string
	location int
	size     int
	array    bool
}

// uniforms returns the uniform declarations of every source, first
// declaration wins when a name repeats across stages.
func uniforms(sources ...string) []declaration {
	var out []declaration
	seen := make(map[string]bool)
	for _, src := range sources {
		for _, m := range uniformDecl.FindAllStringSubmatch(stripComments(src), -1) {
			if seen[m[2]] {
				continue
			}
			seen[m[2]] = true
			size := 1
			if m[3] != "" {
				size, _ = strconv.Atoi(m[3])
			}
			out = append(out, declaration{typ: m[1], name: m[2], size: size, array: m[3] != ""})
		}
	}
	return out
}

// inputs returns stage inputs with explicit layout locations, or -1.
func inputs(src string) []declaration {
	var out []declaration
	for _, m := range inputDecl.FindAllStringSubmatch(stripComments(src), -1) {
		loc := -1
		if m[1] != "" {
			loc, _ = strconv.Atoi(m[1])
		}
		out = append(out, declaration{typ: m[2], name: m[3], location: loc, size: 1})
	}
	return out
}

func outputs(src string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range outputDecl.FindAllStringSubmatch(stripComments(src), -1) {
		out[m[1]] = true
	}
	return out
}

func hasMain(src string) bool {
	return mainSignature.MatchString(stripComments(src))
}

func uniformType(name string) gpu.UniformType {
	if t, ok := uniformTypes[name]; ok {
		return t
	}
	return gpu.UniformOther
}

// reportedName mirrors how drivers list arrays: the first element, "[0]".
func reportedName(d declaration) string {
	if d.array {
		return d.name + "[0]"
	}
	return d.name
}

func baseName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
