//go:build !shadereditdebug

package shaderedit

const contractPanics = false
