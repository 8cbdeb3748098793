package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frost/render"
	"github.com/gogpu/frost/shaders"
)

// pipelineKey selects one render pipeline of a program.
type pipelineKey struct {
	format gputypes.TextureFormat
	blend  blendMode
}

// program is a shader module with its pipelines, created per target format
// and blend mode on first use.
type program struct {
	dev       *Device
	kind      render.ProgramKind
	label     string
	shader    hal.ShaderModule
	pipelines map[pipelineKey]hal.RenderPipeline
}

func (p *program) Kind() render.ProgramKind { return p.kind }

// Destroy releases the pipelines and the shader module.
func (p *program) Destroy() {
	if p.shader == nil {
		return
	}
	for k, pl := range p.pipelines {
		p.dev.device.DestroyRenderPipeline(pl)
		delete(p.pipelines, k)
	}
	p.dev.device.DestroyShaderModule(p.shader)
	p.shader = nil
}

// CompileProgram creates the shader module of desc. Pipelines are built
// lazily by the first draw into each target format.
func (d *Device) CompileProgram(desc render.ProgramDescriptor) (render.Program, error) {
	if d.closed {
		return nil, fmt.Errorf("%w: %w", render.ErrProgram, ErrClosed)
	}
	switch desc.Kind {
	case render.ProgramDownsample, render.ProgramUpsample, render.ProgramNoise:
	default:
		return nil, fmt.Errorf("%w: %s: unknown program kind %d", render.ErrProgram, desc.Label, desc.Kind)
	}
	if desc.Source == "" {
		return nil, fmt.Errorf("%w: %s: empty source", render.ErrProgram, desc.Label)
	}

	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: desc.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", render.ErrProgram, desc.Label, err)
	}
	d.logger.Debug("wgpu: program compiled", "label", desc.Label, "kind", desc.Kind.String())
	return &program{
		dev:       d,
		kind:      desc.Kind,
		label:     desc.Label,
		shader:    shader,
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}, nil
}

func (p *program) pipeline(key pipelineKey) (hal.RenderPipeline, error) {
	if pl, ok := p.pipelines[key]; ok {
		return pl, nil
	}
	target := gputypes.ColorTargetState{
		Format:    key.format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	switch key.blend {
	case blendPremultiplied:
		b := gputypes.BlendStatePremultiplied()
		target.Blend = &b
	case blendAdditive:
		b := gputypes.BlendStatePremultiplied()
		b.Color.DstFactor = gputypes.BlendFactorOne
		b.Alpha.DstFactor = gputypes.BlendFactorOne
		target.Blend = &b
	}

	label := fmt.Sprintf("%s_pipeline_%v_%d", p.label, key.format, key.blend)
	pl, err := p.dev.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.dev.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", render.ErrProgram, label, err)
	}
	p.pipelines[key] = pl
	return pl, nil
}

// createLayouts builds the bind group layout shared by every program and
// the uniform buffer backing binding 0.
func (d *Device) createLayouts() error {
	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "frost_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	d.bindLayout = layout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "frost_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{d.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	d.pipeLayout = pipeLayout

	uniforms, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frost_uniforms",
		Size:  shaders.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	d.uniforms = uniforms
	return nil
}

// samplerKey selects a cached sampler.
type samplerKey struct {
	filter  render.FilterMode
	address render.AddressMode
}

func (d *Device) sampler(desc render.TextureDescriptor) (hal.Sampler, error) {
	key := samplerKey{filter: desc.Filter, address: desc.AddressMode}
	if s, ok := d.samplers[key]; ok {
		return s, nil
	}
	filter := gputypes.FilterModeLinear
	if key.filter == render.FilterNearest {
		filter = gputypes.FilterModeNearest
	}
	address := gputypes.AddressModeClampToEdge
	if key.address == render.AddressRepeat {
		address = gputypes.AddressModeRepeat
	}
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "frost_sampler",
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	d.samplers[key] = s
	return s, nil
}
