//go:build opencl

package driver

// #cgo LDFLAGS: -lOpenCL
// #include <CL/cl.h>
// #include <stdlib.h>
import "C"

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/createxcrunch/createxcrunch/internal/config"
	"github.com/createxcrunch/createxcrunch/internal/kernel"
)

// OpenCLDevice binds the synthesized kernel source to a single OpenCL
// platform/device and keeps the context, queue, and compiled program alive
// for the lifetime of the search run.
type OpenCLDevice struct {
	cfg *config.Config

	platform C.cl_platform_id
	device   C.cl_device_id
	context  C.cl_context
	queue    C.cl_command_queue
	program  C.cl_program
	kern     C.cl_kernel
}

// NewDevice returns the real cgo-backed OpenCL device. The "opencl" build
// tag selects this constructor over opencl_stub.go's CPU fallback; callers
// that only need a Device should use this so they compile under both build
// configurations.
func NewDevice(cfg *config.Config) (Device, error) {
	return NewOpenCLDevice(cfg)
}

// NewOpenCLDevice selects platform/device gpuDeviceID, builds the
// synthesized program, and compiles the "hashMessage" kernel.
func NewOpenCLDevice(cfg *config.Config) (*OpenCLDevice, error) {
	src, err := kernel.BuildSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("synthesize kernel source: %w", err)
	}

	var platformCount C.cl_uint
	if C.clGetPlatformIDs(0, nil, &platformCount) != C.CL_SUCCESS || platformCount == 0 {
		return nil, fmt.Errorf("no OpenCL platforms available")
	}
	platforms := make([]C.cl_platform_id, platformCount)
	C.clGetPlatformIDs(platformCount, &platforms[0], nil)

	var deviceCount C.cl_uint
	var devices []C.cl_device_id
	var platform C.cl_platform_id
	for _, p := range platforms {
		C.clGetDeviceIDs(p, C.CL_DEVICE_TYPE_GPU, 0, nil, &deviceCount)
		if deviceCount == 0 {
			continue
		}
		devices = make([]C.cl_device_id, deviceCount)
		C.clGetDeviceIDs(p, C.CL_DEVICE_TYPE_GPU, deviceCount, &devices[0], nil)
		platform = p
		break
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no OpenCL GPU devices available")
	}
	idx := int(cfg.GPUDeviceID)
	if idx >= len(devices) {
		idx = 0
	}
	device := devices[idx]

	var ret C.cl_int
	context := C.clCreateContext(nil, 1, &device, nil, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateContext failed: %d", ret)
	}
	queue := C.clCreateCommandQueue(context, device, 0, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateCommandQueue failed: %d", ret)
	}

	cSrc := C.CString(src)
	defer C.free(unsafe.Pointer(cSrc))
	program := C.clCreateProgramWithSource(context, 1, &cSrc, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateProgramWithSource failed: %d", ret)
	}
	if C.clBuildProgram(program, 1, &device, nil, nil, nil) != C.CL_SUCCESS {
		var logSize C.size_t
		C.clGetProgramBuildInfo(program, device, C.CL_PROGRAM_BUILD_LOG, 0, nil, &logSize)
		logBuf := make([]byte, logSize)
		C.clGetProgramBuildInfo(program, device, C.CL_PROGRAM_BUILD_LOG, logSize, unsafe.Pointer(&logBuf[0]), nil)
		return nil, fmt.Errorf("kernel build failed: %s", string(logBuf))
	}

	cKernelName := C.CString("hashMessage")
	defer C.free(unsafe.Pointer(cKernelName))
	kern := C.clCreateKernel(program, cKernelName, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateKernel failed: %d", ret)
	}

	return &OpenCLDevice{
		cfg: cfg, platform: platform, device: device,
		context: context, queue: queue, program: program, kern: kern,
	}, nil
}

// Begin allocates a fresh results buffer for one outer-loop iteration.
func (d *OpenCLDevice) Begin() (Iteration, error) {
	r := int(d.cfg.ResultBufferSize)
	size := C.size_t(4 * r * 8)

	var ret C.cl_int
	buf := C.clCreateBuffer(d.context, C.CL_MEM_READ_WRITE, size, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateBuffer(solutions) failed: %d", ret)
	}
	zero := make([]C.cl_ulong, 4*r)
	if C.clEnqueueWriteBuffer(d.queue, buf, C.CL_TRUE, 0, size, unsafe.Pointer(&zero[0]), 0, nil, nil) != C.CL_SUCCESS {
		return nil, fmt.Errorf("zero solutions buffer failed")
	}

	return &openCLIteration{dev: d, solutionsBuf: buf, resultBufferSize: r}, nil
}

// Close releases the compiled program, queue, and context.
func (d *OpenCLDevice) Close() error {
	C.clReleaseKernel(d.kern)
	C.clReleaseProgram(d.program)
	C.clReleaseCommandQueue(d.queue)
	C.clReleaseContext(d.context)
	return nil
}

type openCLIteration struct {
	dev              *OpenCLDevice
	solutionsBuf     C.cl_mem
	resultBufferSize int
}

func (it *openCLIteration) Submit(ctx context.Context, prefix [4]byte, nonce uint32) ([]uint64, error) {
	d := it.dev

	var ret C.cl_int
	msgBuf := C.clCreateBuffer(d.context, C.CL_MEM_READ_ONLY, 4, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateBuffer(message) failed: %d", ret)
	}
	defer C.clReleaseMemObject(msgBuf)
	cPrefix := (*C.uchar)(unsafe.Pointer(&prefix[0]))
	C.clEnqueueWriteBuffer(d.queue, msgBuf, C.CL_TRUE, 0, 4, unsafe.Pointer(cPrefix), 0, nil, nil)

	nonceBuf := C.clCreateBuffer(d.context, C.CL_MEM_READ_ONLY, 4, nil, &ret)
	if ret != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateBuffer(nonce) failed: %d", ret)
	}
	defer C.clReleaseMemObject(nonceBuf)
	cNonce := C.uint(nonce)
	C.clEnqueueWriteBuffer(d.queue, nonceBuf, C.CL_TRUE, 0, 4, unsafe.Pointer(&cNonce), 0, nil, nil)

	C.clSetKernelArg(d.kern, 0, C.size_t(unsafe.Sizeof(msgBuf)), unsafe.Pointer(&msgBuf))
	C.clSetKernelArg(d.kern, 1, C.size_t(unsafe.Sizeof(nonceBuf)), unsafe.Pointer(&nonceBuf))
	C.clSetKernelArg(d.kern, 2, C.size_t(unsafe.Sizeof(it.solutionsBuf)), unsafe.Pointer(&it.solutionsBuf))

	global := C.size_t(d.cfg.WorkSize)
	if C.clEnqueueNDRangeKernel(d.queue, d.kern, 1, nil, &global, nil, 0, nil, nil) != C.CL_SUCCESS {
		return nil, fmt.Errorf("clEnqueueNDRangeKernel failed")
	}

	solutions := make([]uint64, 4*it.resultBufferSize)
	size := C.size_t(len(solutions) * 8)
	if C.clEnqueueReadBuffer(d.queue, it.solutionsBuf, C.CL_TRUE, 0, size, unsafe.Pointer(&solutions[0]), 0, nil, nil) != C.CL_SUCCESS {
		return nil, fmt.Errorf("clEnqueueReadBuffer failed")
	}
	return solutions, nil
}

func (it *openCLIteration) Release() {
	C.clReleaseMemObject(it.solutionsBuf)
}
