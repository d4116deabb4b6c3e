//go:build shadereditdebug

package shaderedit

// debug builds stop at the first desync
const contractPanics = true
