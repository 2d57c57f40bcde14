//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drape"
)

//go:embed shaders/composite.wgsl
var compositeShaderSource string

const (
	// compositeWGSize is the square workgroup edge used by the shader.
	// Matches @workgroup_size(8, 8, 1) in composite.wgsl.
	compositeWGSize = 8

	// fenceTimeout is the maximum time to wait for GPU work to complete.
	fenceTimeout = 5 * time.Second
)

// compositeParams is the uniform block consumed by the shader.
// Layout must match the Params struct in composite.wgsl:
// three u32 fields and one f32, 16 bytes total.
type compositeParams struct {
	Width     uint32
	Height    uint32
	BlendMode uint32
	Intensity float32
}

// toBytes serializes the params in little-endian layout.
func (p compositeParams) toBytes() []byte {
	buf := make([]byte, 16)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.Width)
	le.PutUint32(buf[4:8], p.Height)
	le.PutUint32(buf[8:12], p.BlendMode)
	le.PutUint32(buf[12:16], math.Float32bits(p.Intensity))
	return buf
}

// compositor owns the compute pipeline for the composite shader.
// Per-render buffers are allocated in composite and released before it
// returns.
type compositor struct {
	device hal.Device
	queue  hal.Queue

	module         hal.ShaderModule
	bgLayout       hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline

	initialized bool
}

func newCompositor(device hal.Device, queue hal.Queue) *compositor {
	return &compositor{device: device, queue: queue}
}

// init compiles the shader and builds the compute pipeline.
func (c *compositor) init() error {
	if c.initialized {
		return nil
	}

	spirv, err := compileShader(compositeShaderSource)
	if err != nil {
		return err
	}
	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "composite",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	c.module = module

	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}

	// @binding(0) uniform params
	// @binding(1) storage(read) garment
	// @binding(2) storage(read) texture
	// @binding(3) storage(read) mask
	// @binding(4) storage(read_write) output
	bgLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "composite_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			storageRO(1), storageRO(2), storageRO(3),
			{
				Binding:    4,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
		},
	})
	if err != nil {
		c.close()
		return fmt.Errorf("create bind group layout: %w", err)
	}
	c.bgLayout = bgLayout

	pipelineLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "composite_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		c.close()
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	c.pipelineLayout = pipelineLayout

	pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "composite",
		Layout: pipelineLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		c.close()
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	c.pipeline = pipeline

	c.initialized = true
	drape.Logger().Debug("gpu: composite pipeline created",
		"shader_bytes", len(compositeShaderSource))
	return nil
}

// close releases the pipeline objects.
func (c *compositor) close() {
	if c.pipeline != nil {
		c.device.DestroyComputePipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.pipelineLayout != nil {
		c.device.DestroyPipelineLayout(c.pipelineLayout)
		c.pipelineLayout = nil
	}
	if c.bgLayout != nil {
		c.device.DestroyBindGroupLayout(c.bgLayout)
		c.bgLayout = nil
	}
	if c.module != nil {
		c.device.DestroyShaderModule(c.module)
		c.module = nil
	}
	c.initialized = false
}

// composite uploads the three input rasters, dispatches the compute
// shader, and reads the result back through a staging buffer.
func (c *compositor) composite(garment, texture, mask *drape.Raster, opts drape.RenderOptions) (*drape.Raster, error) {
	if !c.initialized {
		return nil, fmt.Errorf("compositor not initialized")
	}

	width := uint32(garment.Width())
	height := uint32(garment.Height())
	pixelBufSize := uint64(width) * uint64(height) * 4

	params := compositeParams{
		Width:     width,
		Height:    height,
		BlendMode: uint32(opts.BlendMode),
		Intensity: float32(clampUnit(opts.Intensity)),
	}

	storageIn := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	storageOut := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst

	type bufSpec struct {
		target *hal.Buffer
		label  string
		size   uint64
		usage  gputypes.BufferUsage
	}
	var paramsBuf, garmentBuf, textureBuf, maskBuf, outputBuf, stagingBuf hal.Buffer
	specs := []bufSpec{
		{&paramsBuf, "composite_params", 16, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&garmentBuf, "composite_garment", pixelBufSize, storageIn},
		{&textureBuf, "composite_texture", pixelBufSize, storageIn},
		{&maskBuf, "composite_mask", pixelBufSize, storageIn},
		{&outputBuf, "composite_output", pixelBufSize, storageOut},
		{&stagingBuf, "composite_staging", pixelBufSize, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}

	destroyAll := func() {
		for _, s := range specs {
			if *s.target != nil {
				c.device.DestroyBuffer(*s.target)
			}
		}
	}
	for _, s := range specs {
		buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label, Size: s.size, Usage: s.usage,
		})
		if err != nil {
			destroyAll()
			return nil, fmt.Errorf("create %s buffer: %w", s.label, err)
		}
		*s.target = buf
	}
	defer destroyAll()

	c.queue.WriteBuffer(paramsBuf, 0, params.toBytes())
	c.queue.WriteBuffer(garmentBuf, 0, garment.Pix())
	c.queue.WriteBuffer(textureBuf, 0, texture.Pix())
	c.queue.WriteBuffer(maskBuf, 0, mask.Pix())

	entry := func(binding uint32, buf hal.Buffer, size uint64) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding:  binding,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size},
		}
	}
	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "composite_bg",
		Layout: c.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			entry(0, paramsBuf, 16),
			entry(1, garmentBuf, pixelBufSize),
			entry(2, textureBuf, pixelBufSize),
			entry(3, maskBuf, pixelBufSize),
			entry(4, outputBuf, pixelBufSize),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	defer c.device.DestroyBindGroup(bg)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "composite"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("composite"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "composite"})
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((width+compositeWGSize-1)/compositeWGSize, (height+compositeWGSize-1)/compositeWGSize, 1)
	pass.End()

	encoder.CopyBufferToBuffer(outputBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	ok, err := c.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("GPU timeout after %v", fenceTimeout)
	}

	out := drape.NewRaster(garment.Width(), garment.Height())
	if err := c.queue.ReadBuffer(stagingBuf, 0, out.Pix()); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return out, nil
}

// compileShader compiles WGSL source to SPIR-V words.
func compileShader(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// clampUnit clamps a float to [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
