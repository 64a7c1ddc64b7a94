package renderer

// Uniform names shared between the pipeline and the shader sources below.
const (
	uniformModelMatrix    = "u_ModelMatrix"
	uniformNormalMatrix   = "u_NormalMatrix"
	uniformViewProjMatrix = "u_ViewProjMatrix"
	uniformCameraPosition = "u_CameraPosition"
	uniformAmbientLight   = "u_AmbientLight"

	uniformDirLightDirection = "u_DirectionalLight.direction"
	uniformDirLightColor     = "u_DirectionalLight.color"

	samplerSkybox      = "u_TexSkybox"
	samplerBright      = "u_TexBrightBuffer"
	uniformHorizontal  = "u_Horizontal"
	samplerColorBuffer = "u_TexColorBuffer"
	samplerBloomBuffer = "u_TexBloomBuffer"
	uniformExposure    = "u_Exposure"
	uniformGamma       = "u_Gamma"
)

// geometryVertexSrc transforms mesh vertices to clip space and passes the
// world-space position and normal on for lighting.
const geometryVertexSrc = `#version 410 core
layout(location = 0) in vec3 a_Position;
layout(location = 1) in vec3 a_Normal;
layout(location = 2) in vec2 a_UV;

uniform mat4 u_ModelMatrix;
uniform mat4 u_ViewProjMatrix;
uniform mat3 u_NormalMatrix;

out vec3 v_Position;
out vec3 v_Normal;
out vec2 v_UV;

void main() {
    vec4 worldPosition = u_ModelMatrix * vec4(a_Position, 1.0);
    gl_Position = u_ViewProjMatrix * worldPosition;

    v_Position = worldPosition.xyz;
    v_Normal = u_NormalMatrix * a_Normal;
    v_UV = a_UV;
}
`

// fullscreenVertexSrc passes the built-in quad straight through in NDC.
const fullscreenVertexSrc = `#version 410 core
layout(location = 0) in vec3 a_Position;
layout(location = 1) in vec3 a_Normal;
layout(location = 2) in vec2 a_UV;

out vec2 v_UV;

void main() {
    gl_Position = vec4(a_Position.xy, 0.0, 1.0);
    v_UV = a_UV;
}
`

// geometryFragmentSrc shades Blinn-Phong with one directional light and
// fixed arrays of point and spot lights. Colour goes to attachment 0; the
// part of it brighter than 1 in luminance also goes to attachment 1.
const geometryFragmentSrc = `#version 410 core
in vec3 v_Position;
in vec3 v_Normal;
in vec2 v_UV;

uniform vec3 u_Diffuse;
uniform vec3 u_Emissive;
uniform vec3 u_Specular;
uniform float u_Shininess;

uniform sampler2D u_TexDiffuse;
uniform sampler2D u_TexEmissive;
uniform sampler2D u_TexSpecular;
uniform sampler2D u_TexShininess;

uniform vec3 u_CameraPosition;
uniform vec3 u_AmbientLight;

struct Fragment {
    vec3 position;
    vec3 normal;
    vec3 diffuse;
    vec3 specular;
    vec3 emissive;
    float shininess;
};

struct DirectionalLight {
    vec3 direction;
    vec3 color;
};

struct PointLight {
    vec3 position;
    vec3 color;
    float constant;
    float linear;
    float quadratic;
};

struct SpotLight {
    vec3 position;
    vec3 direction;
    vec3 color;
    float constant;
    float linear;
    float quadratic;
    float innerCutoff; // cosines
    float outerCutoff;
};

#define POINT_LIGHTS 4
#define SPOT_LIGHTS 4

uniform DirectionalLight u_DirectionalLight;
uniform PointLight u_PointLights[POINT_LIGHTS];
uniform SpotLight u_SpotLights[SPOT_LIGHTS];

layout(location = 0) out vec4 o_Color;
layout(location = 1) out vec4 o_Bright;

vec3 blinnPhong(vec3 lightDirection, vec3 color, Fragment frag) {
    float diff = max(0.0, dot(lightDirection, frag.normal));

    vec3 viewDirection = normalize(u_CameraPosition - frag.position);
    vec3 halfway = normalize(viewDirection + lightDirection);
    float spec = pow(max(0.0, dot(frag.normal, halfway)), frag.shininess);

    return diff * color * frag.diffuse + spec * color * frag.specular;
}

float attenuate(float constant, float linear, float quadratic, float distance) {
    return 1.0 / max(1.0, constant + linear * distance + quadratic * distance * distance);
}

vec3 directionalContribution(DirectionalLight light, Fragment frag) {
    if (dot(light.direction, light.direction) == 0.0) {
        return vec3(0.0);
    }
    return blinnPhong(normalize(-light.direction), light.color, frag);
}

vec3 pointContribution(PointLight light, Fragment frag) {
    vec3 fragToLight = light.position - frag.position;
    float att = attenuate(light.constant, light.linear, light.quadratic, length(fragToLight));
    return att * blinnPhong(normalize(fragToLight), light.color, frag);
}

vec3 spotContribution(SpotLight light, Fragment frag) {
    vec3 fragToLight = light.position - frag.position;
    vec3 lightDirection = normalize(fragToLight);

    float theta = dot(lightDirection, normalize(-light.direction));
    float epsilon = max(1e-4, light.innerCutoff - light.outerCutoff);
    float cone = clamp((theta - light.outerCutoff) / epsilon, 0.0, 1.0);

    float att = attenuate(light.constant, light.linear, light.quadratic, length(fragToLight));
    return cone * att * blinnPhong(lightDirection, light.color, frag);
}

void main() {
    Fragment frag;
    frag.position = v_Position;
    frag.normal = normalize(v_Normal);
    frag.diffuse = u_Diffuse + texture(u_TexDiffuse, v_UV).rgb;
    frag.specular = u_Specular + texture(u_TexSpecular, v_UV).rgb;
    frag.emissive = u_Emissive + texture(u_TexEmissive, v_UV).rgb;
    frag.shininess = max(1.0, u_Shininess + texture(u_TexShininess, v_UV).r);

    vec3 light = directionalContribution(u_DirectionalLight, frag);
    for (int i = 0; i < POINT_LIGHTS; ++i) {
        light += pointContribution(u_PointLights[i], frag);
    }
    for (int i = 0; i < SPOT_LIGHTS; ++i) {
        light += spotContribution(u_SpotLights[i], frag);
    }
    light += u_AmbientLight * frag.diffuse;

    vec3 color = light + frag.emissive;

    const vec3 relativeLuminance = vec3(0.2126, 0.7152, 0.0722);
    o_Bright = vec4(step(1.0, dot(color, relativeLuminance)) * color, 1.0);
    o_Color = vec4(color, 1.0);
}
`

// skyboxVertexSrc draws the built-in cube around the camera. The view
// matrix has no translation and xyww pins every fragment to the far plane.
const skyboxVertexSrc = `#version 410 core
layout(location = 0) in vec3 a_Position;

uniform mat4 u_ViewProjMatrix;

out vec3 v_Direction;

void main() {
    v_Direction = a_Position;
    vec4 pos = u_ViewProjMatrix * vec4(a_Position, 1.0);
    gl_Position = pos.xyww;
}
`

// skyboxFragmentSrc samples an equirectangular panorama by view direction.
const skyboxFragmentSrc = `#version 410 core
in vec3 v_Direction;

uniform sampler2D u_TexSkybox;

layout(location = 0) out vec4 o_Color;

const float PI = 3.14159265359;

void main() {
    vec3 d = normalize(v_Direction);
    vec2 uv = vec2(atan(d.z, d.x) / (2.0 * PI) + 0.5, asin(clamp(d.y, -1.0, 1.0)) / PI + 0.5);
    o_Color = vec4(texture(u_TexSkybox, uv).rgb, 1.0);
}
`

// bloomFragmentSrc is one axis of a separable 9-tap gaussian.
const bloomFragmentSrc = `#version 410 core
in vec2 v_UV;

uniform sampler2D u_TexBrightBuffer;
uniform int u_Horizontal;

// half row of a 9-tap gaussian kernel
const float weights[5] = float[](0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216);

out vec4 o_Color;

void main() {
    vec2 texelOffset = 1.0 / vec2(textureSize(u_TexBrightBuffer, 0));
    texelOffset *= vec2(u_Horizontal, 1 - u_Horizontal);

    vec3 color = texture(u_TexBrightBuffer, v_UV).rgb * weights[0];
    for (int i = 1; i < 5; ++i) {
        color += texture(u_TexBrightBuffer, v_UV + i * texelOffset).rgb * weights[i];
        color += texture(u_TexBrightBuffer, v_UV - i * texelOffset).rgb * weights[i];
    }
    o_Color = vec4(color, 1.0);
}
`

// postFragmentSrc adds bloom to the scene colour, tone maps by exposure and
// gamma corrects.
const postFragmentSrc = `#version 410 core
in vec2 v_UV;

uniform sampler2D u_TexColorBuffer;
uniform sampler2D u_TexBloomBuffer;

uniform float u_Exposure;
uniform float u_Gamma;

out vec4 o_Color;

void main() {
    vec3 color = texture(u_TexColorBuffer, v_UV).rgb + texture(u_TexBloomBuffer, v_UV).rgb;
    color = vec3(1.0) - exp(-color * u_Exposure);
    color = pow(color, vec3(1.0 / u_Gamma));
    o_Color = vec4(color, 1.0);
}
`


// Overlay uniforms.
const (
	uniformProjection = "u_Projection"
	uniformRectangle  = "u_Rectangle"
	uniformShape      = "u_Shape"
	uniformColor      = "u_Color"
	uniformPixelSize  = "u_PixelSize"
	uniformStroke     = "u_Stroke"
	samplerImage      = "u_TexImage"
)

// overlayVertexSrc stretches the built-in quad over u_Rectangle, given as
// (x1, y1, x2, y2) in pixels.
const overlayVertexSrc = `#version 410 core
layout(location = 0) in vec3 a_Position;
layout(location = 1) in vec3 a_Normal;
layout(location = 2) in vec2 a_UV;

uniform mat4 u_Projection;
uniform vec4 u_Rectangle;

out vec2 v_UV;

void main() {
    v_UV = a_UV;
    vec2 p = mix(u_Rectangle.xy, u_Rectangle.zw, a_UV);
    gl_Position = u_Projection * vec4(p, 0.0, 1.0);
}
`

// overlayFragmentSrc draws one 2D shape. u_Shape: 0 filled rectangle,
// 1 rectangle outline, 2 filled ellipse, 3 ellipse outline, 4 image.
// Outlines are u_Stroke pixels wide, measured inwards.
const overlayFragmentSrc = `#version 410 core
in vec2 v_UV;

uniform int u_Shape;
uniform vec4 u_Color;
uniform vec2 u_PixelSize;
uniform float u_Stroke;
uniform sampler2D u_TexImage;

out vec4 o_Color;

void main() {
    vec2 px = v_UV * u_PixelSize;

    if (u_Shape == 1) {
        if (all(greaterThan(px, vec2(u_Stroke))) && all(lessThan(px, u_PixelSize - u_Stroke))) {
            discard;
        }
    } else if (u_Shape == 2 || u_Shape == 3) {
        vec2 v = 2.0 * v_UV - 1.0;
        if (dot(v, v) > 1.0) {
            discard;
        }
        vec2 inner = u_PixelSize - 2.0 * u_Stroke;
        if (u_Shape == 3 && inner.x > 0.0 && inner.y > 0.0) {
            vec2 w = (px - 0.5 * u_PixelSize) / (0.5 * inner);
            if (dot(w, w) < 1.0) {
                discard;
            }
        }
    } else if (u_Shape == 4) {
        o_Color = texture(u_TexImage, v_UV);
        return;
    }
    o_Color = u_Color;
}
`
