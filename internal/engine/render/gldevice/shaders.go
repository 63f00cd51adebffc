package gldevice

const batchVertex = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;
layout (location = 3) in vec2 aUV2;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProj;

out vec3 vNormal;
out vec2 vUV;
out vec2 vUV2;

void main() {
	vNormal = mat3(uModel) * aNormal;
	vUV = aUV;
	vUV2 = aUV2;
	gl_Position = uProj * uView * uModel * vec4(aPos, 1.0);
}
`

const batchFragment = `
#version 410 core

in vec3 vNormal;
in vec2 vUV;
in vec2 vUV2;

uniform sampler2D uTex0;
uniform sampler2D uTex1;
uniform int uHasTex0;
uniform int uHasTex1;
uniform vec4 uDiffuse;
uniform vec4 uAmbient;
uniform vec4 uEmissive;
uniform vec3 uLightDir;
uniform float uSunAmbient;
uniform float uAlpha;

out vec4 FragColor;

void main() {
	float light = 1.0;
	if (length(vNormal) > 0.0) {
		light = max(dot(normalize(vNormal), uLightDir), 0.0);
	}
	vec3 lit = uAmbient.rgb * uSunAmbient + uDiffuse.rgb * light + uEmissive.rgb;
	vec4 color = vec4(lit, uDiffuse.a);

	if (uHasTex0 == 1) {
		vec4 t = texture(uTex0, vUV);
		if (t.a < 0.5) {
			discard;
		}
		color *= t;
	}
	if (uHasTex1 == 1) {
		color.rgb *= texture(uTex1, vUV2).rgb * 2.0;
	}
	color.a *= uAlpha;
	FragColor = color;
}
`

const lineVertex = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uMVP;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
}
`

const lineFragment = `
#version 410 core

uniform vec4 uColor;

out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`
